package application

import "slices"

// SeatState describes a seat as seen by a viewer.
type SeatState string

const (
	SeatAvailable  SeatState = "available"
	SeatTakenOther SeatState = "taken-other"
	SeatTakenSelf  SeatState = "taken-self"
)

// Seat is one cell of the seat chart.
type Seat struct {
	Number    int
	Table     int
	State     SeatState
	Occupants []string
}

// SeatChart lists seats 1..MaxSeats.
type SeatChart struct {
	MaxSeats      int
	SeatsPerTable int
	Seats         []Seat
}

// TableNumber returns ceil(seat/perTable), or 0 when either value is not positive.
func TableNumber(seat, perTable int) int {
	if seat <= 0 || perTable <= 0 {
		return 0
	}
	return (seat + perTable - 1) / perTable
}

// tableFor returns the table for an optional seat.
func tableFor(seat *int, perTable int) *int {
	if seat == nil {
		return nil
	}
	table := TableNumber(*seat, perTable)
	if table == 0 {
		return nil
	}
	return &table
}

// BuildSeatChart renders occupancy of seats 1..maxSeats for viewer. Every
// holder of a seat number sees taken-self for it, so legacy duplicates still
// render. Only administrators receive occupant names. Seats outside the range
// are ignored.
func BuildSeatChart(maxSeats, perTable int, guests []Guest, viewer Principal) SeatChart {
	if maxSeats < 0 {
		maxSeats = 0
	}
	occupants := make(map[int][]string)
	selfSeats := make(map[int]bool)
	for _, g := range guests {
		if g.SeatNumber == nil || *g.SeatNumber < 1 || *g.SeatNumber > maxSeats {
			continue
		}
		seat := *g.SeatNumber
		occupants[seat] = append(occupants[seat], g.Name)
		if !viewer.IsAdmin && viewer.AccessCode != "" && g.AccessCode == viewer.AccessCode {
			selfSeats[seat] = true
		}
	}

	chart := SeatChart{MaxSeats: maxSeats, SeatsPerTable: perTable, Seats: make([]Seat, maxSeats)}
	for i := range chart.Seats {
		number := i + 1
		seat := Seat{Number: number, Table: TableNumber(number, perTable), State: SeatAvailable}
		switch {
		case selfSeats[number]:
			seat.State = SeatTakenSelf
		case len(occupants[number]) > 0:
			seat.State = SeatTakenOther
		}
		if viewer.IsAdmin && len(occupants[number]) > 0 {
			seat.Occupants = slices.Clone(occupants[number])
		}
		chart.Seats[i] = seat
	}
	return chart
}

// validateSeat checks range and uniqueness of a seat assignment against other guests.
func validateSeat(seat, maxSeats int, others []Guest) *ValidationError {
	vErr := &ValidationError{}
	if seat < 1 || seat > maxSeats {
		vErr.add("seat_number", "seat number must be between 1 and the configured seat count")
		return vErr
	}
	for _, g := range others {
		if g.SeatNumber != nil && *g.SeatNumber == seat {
			vErr.add("seat_number", "seat is already assigned to "+g.Name)
			break
		}
	}
	return vErr
}
