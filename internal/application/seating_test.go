package application

import "testing"

func TestTableNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seat, perTable, want int
	}{
		{seat: 23, perTable: 10, want: 3},
		{seat: 10, perTable: 10, want: 1},
		{seat: 11, perTable: 10, want: 2},
		{seat: 1, perTable: 8, want: 1},
		{seat: 0, perTable: 10, want: 0},
		{seat: 5, perTable: 0, want: 0},
	}
	for _, tt := range tests {
		if got := TableNumber(tt.seat, tt.perTable); got != tt.want {
			t.Errorf("TableNumber(%d, %d) = %d, want %d", tt.seat, tt.perTable, got, tt.want)
		}
	}
}

func TestBuildSeatChart(t *testing.T) {
	t.Parallel()

	guests := []Guest{
		{AccessCode: "SELF1", Name: "Ada", SeatNumber: intPtr(150)},
		{AccessCode: "OTHER", Name: "Ben", SeatNumber: intPtr(7)},
		{AccessCode: "NOSEAT", Name: "Cy"},
		{AccessCode: "BIGGY", Name: "Dee", SeatNumber: intPtr(400)},
	}

	t.Run("guest viewer", func(t *testing.T) {
		chart := BuildSeatChart(300, 10, guests, Principal{AccessCode: "SELF1"})
		if len(chart.Seats) != 300 {
			t.Fatalf("expected 300 seats, got %d", len(chart.Seats))
		}
		if got := chart.Seats[149]; got.State != SeatTakenSelf || got.Table != 15 {
			t.Fatalf("expected seat 150 taken-self at table 15, got %+v", got)
		}
		if got := chart.Seats[6]; got.State != SeatTakenOther {
			t.Fatalf("expected seat 7 taken-other, got %+v", got)
		}
		if got := chart.Seats[0]; got.State != SeatAvailable {
			t.Fatalf("expected seat 1 available, got %+v", got)
		}
		for _, seat := range chart.Seats {
			if len(seat.Occupants) > 0 {
				t.Fatalf("guests must not see occupant names, seat %d has %v", seat.Number, seat.Occupants)
			}
		}
	})

	t.Run("admin viewer sees occupants", func(t *testing.T) {
		chart := BuildSeatChart(300, 10, guests, Principal{AccessCode: AdminCode, IsAdmin: true})
		if got := chart.Seats[149]; got.State != SeatTakenOther || len(got.Occupants) != 1 || got.Occupants[0] != "Ada" {
			t.Fatalf("expected admin to see Ada on seat 150, got %+v", got)
		}
	})

	t.Run("duplicate legacy seats render for every holder", func(t *testing.T) {
		dupes := []Guest{
			{AccessCode: "AAAAA", Name: "Ada", SeatNumber: intPtr(3)},
			{AccessCode: "BBBBB", Name: "Ben", SeatNumber: intPtr(3)},
		}
		for _, code := range []string{"AAAAA", "BBBBB"} {
			chart := BuildSeatChart(10, 5, dupes, Principal{AccessCode: code})
			if chart.Seats[2].State != SeatTakenSelf {
				t.Fatalf("expected %s to see seat 3 as taken-self", code)
			}
		}
		admin := BuildSeatChart(10, 5, dupes, Principal{IsAdmin: true, AccessCode: AdminCode})
		if len(admin.Seats[2].Occupants) != 2 {
			t.Fatalf("expected both occupants, got %v", admin.Seats[2].Occupants)
		}
	})
}

func TestValidateSeat(t *testing.T) {
	t.Parallel()

	others := []Guest{{Name: "Ben", SeatNumber: intPtr(7)}, {Name: "Cy"}}
	tests := []struct {
		name    string
		seat    int
		wantErr bool
	}{
		{name: "free seat", seat: 8},
		{name: "lower bound", seat: 1},
		{name: "upper bound", seat: 10},
		{name: "zero", seat: 0, wantErr: true},
		{name: "above max", seat: 11, wantErr: true},
		{name: "taken", seat: 7, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vErr := validateSeat(tt.seat, 10, others)
			if vErr.HasErrors() != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, vErr.FieldErrors)
			}
			if tt.wantErr {
				if _, ok := vErr.FieldErrors["seat_number"]; !ok {
					t.Fatalf("expected seat_number field error, got %v", vErr.FieldErrors)
				}
			}
		})
	}
}
