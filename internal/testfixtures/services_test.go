package testfixtures

import (
	"context"
	"testing"

	"github.com/example/wedding-portal/internal/application"
)

func TestServiceFactoryNewPortal(t *testing.T) {
	factory := NewServiceFactory()
	portal := factory.NewPortal(application.Repositories{})
	ctx := context.Background()

	guest, err := portal.Guests.AddGuest(ctx, application.AddGuestParams{
		Principal: AdminPrincipal(),
		Input:     application.GuestInput{Name: "Ada"},
	})
	if err != nil {
		t.Fatalf("AddGuest returned error: %v", err)
	}
	if guest.AccessCode != "ABCDE" {
		t.Fatalf("expected deterministic code ABCDE, got %q", guest.AccessCode)
	}
	if guest.ID != "id-001" {
		t.Fatalf("expected generated ID id-001, got %q", guest.ID)
	}
	if !guest.CreatedAt.Equal(EventEve()) {
		t.Fatalf("expected timestamp %v, got %v", EventEve(), guest.CreatedAt)
	}

	session, err := portal.Auth.Login(ctx, guest.AccessCode)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.Token != "token-001" || session.Principal.AccessCode != "ABCDE" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestGuestFixtureConversions(t *testing.T) {
	fixture := NewGuestFixture(WithSeat(9), WithCategory(application.CategoryPremium), WithMeal("Jollof", ""), Arrived())

	app := fixture.Application()
	row := fixture.Persistence()
	if app.AccessCode != row.AccessCode || string(app.Category) != row.Category {
		t.Fatalf("conversions disagree: %+v vs %+v", app, row)
	}
	if app.SeatNumber == fixture.SeatNumber {
		t.Fatal("expected seat pointer to be copied")
	}
	if *row.SelectedFood != "Jollof" || row.SelectedDrink != nil || !row.Arrived {
		t.Fatalf("unexpected row %+v", row)
	}
}
