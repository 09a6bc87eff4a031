package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/wedding-portal/internal/application"
	"github.com/example/wedding-portal/internal/persistence"
)

var (
	guestCounter uint64
	menuCounter  uint64
)

var eventEve = time.Date(2025, time.December, 19, 18, 0, 0, 0, time.UTC)

// EventEve returns the canonical baseline timestamp used by fixtures, the
// evening before EventDate.
func EventEve() time.Time {
	return eventEve
}

// EventDate returns the wedding date used by SettingsFixture.
func EventDate() time.Time {
	return eventEve.Add(20 * time.Hour)
}

// ----------------------------- Guest fixtures -----------------------------

// GuestFixture is a deterministic guest that can be materialised for
// application or persistence tests.
type GuestFixture struct {
	ID            string
	AccessCode    string
	Name          string
	SeatNumber    *int
	Arrived       bool
	SelectedFood  *string
	SelectedDrink *string
	Category      application.GuestCategory
	CreatedAt     time.Time
}

// GuestOption configures the generated guest fixture.
type GuestOption func(*GuestFixture)

// NewGuestFixture returns a regular, unseated guest with a unique six
// character access code.
func NewGuestFixture(opts ...GuestOption) GuestFixture {
	idx := atomic.AddUint64(&guestCounter, 1)
	fixture := GuestFixture{
		ID:         fmt.Sprintf("guest-%03d", idx),
		AccessCode: fmt.Sprintf("G%05d", idx),
		Name:       fmt.Sprintf("Guest %03d", idx),
		Category:   application.CategoryRegular,
		CreatedAt:  eventEve.Add(time.Duration(idx) * time.Second),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAccessCode overrides the generated access code.
func WithAccessCode(code string) GuestOption {
	return func(f *GuestFixture) {
		f.AccessCode = code
	}
}

// WithGuestName overrides the generated name.
func WithGuestName(name string) GuestOption {
	return func(f *GuestFixture) {
		f.Name = name
	}
}

// WithSeat assigns a seat.
func WithSeat(seat int) GuestOption {
	return func(f *GuestFixture) {
		f.SeatNumber = &seat
	}
}

// WithCategory overrides the category.
func WithCategory(category application.GuestCategory) GuestOption {
	return func(f *GuestFixture) {
		f.Category = category
	}
}

// WithMeal records food and drink choices. Empty values leave a choice unset.
func WithMeal(food, drink string) GuestOption {
	return func(f *GuestFixture) {
		if food != "" {
			f.SelectedFood = &food
		}
		if drink != "" {
			f.SelectedDrink = &drink
		}
	}
}

// Arrived marks the guest as arrived.
func Arrived() GuestOption {
	return func(f *GuestFixture) {
		f.Arrived = true
	}
}

// Application returns the fixture as an application.Guest.
func (f GuestFixture) Application() application.Guest {
	return application.Guest{
		ID:            f.ID,
		AccessCode:    f.AccessCode,
		Name:          f.Name,
		SeatNumber:    copyIntPtr(f.SeatNumber),
		Arrived:       f.Arrived,
		SelectedFood:  copyStringPtr(f.SelectedFood),
		SelectedDrink: copyStringPtr(f.SelectedDrink),
		Category:      f.Category,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Guest.
func (f GuestFixture) Persistence() persistence.Guest {
	return persistence.Guest{
		ID:            f.ID,
		AccessCode:    f.AccessCode,
		Name:          f.Name,
		SeatNumber:    copyIntPtr(f.SeatNumber),
		Arrived:       f.Arrived,
		SelectedFood:  copyStringPtr(f.SelectedFood),
		SelectedDrink: copyStringPtr(f.SelectedDrink),
		Category:      string(f.Category),
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.CreatedAt,
	}
}

// Principal returns the guest principal for the fixture's code.
func (f GuestFixture) Principal() application.Principal {
	return application.Principal{AccessCode: f.AccessCode}
}

// Input returns the fixture as an application.GuestInput.
func (f GuestFixture) Input() application.GuestInput {
	return application.GuestInput{Name: f.Name, Category: f.Category, SeatNumber: copyIntPtr(f.SeatNumber)}
}

// AdminPrincipal returns the administrator principal.
func AdminPrincipal() application.Principal {
	return application.Principal{AccessCode: application.AdminCode, IsAdmin: true}
}

// ----------------------------- Menu fixtures ------------------------------

// MenuItemFixture is a deterministic food or drink option.
type MenuItemFixture struct {
	ID        string
	Name      string
	Category  string
	CreatedAt time.Time
}

// NewFoodFixture returns a main course named name.
func NewFoodFixture(name string) MenuItemFixture {
	return newMenuFixture(name, "main")
}

// NewDrinkFixture returns a non-alcoholic drink named name.
func NewDrinkFixture(name string) MenuItemFixture {
	return newMenuFixture(name, "non-alcoholic")
}

func newMenuFixture(name, category string) MenuItemFixture {
	idx := atomic.AddUint64(&menuCounter, 1)
	return MenuItemFixture{
		ID:        fmt.Sprintf("menu-%03d", idx),
		Name:      name,
		Category:  category,
		CreatedAt: eventEve.Add(time.Duration(idx) * time.Second),
	}
}

// Application returns the fixture as an application.MenuItem.
func (f MenuItemFixture) Application() application.MenuItem {
	return application.MenuItem{ID: f.ID, Name: f.Name, Category: f.Category, CreatedAt: f.CreatedAt}
}

// Persistence returns the fixture as a persistence.MenuItem.
func (f MenuItemFixture) Persistence() persistence.MenuItem {
	return persistence.MenuItem{ID: f.ID, Name: f.Name, Category: f.Category, CreatedAt: f.CreatedAt}
}

// ---------------------------- Settings fixture ----------------------------

// SettingsFixture returns event settings for a 40 seat venue with tables of 8.
func SettingsFixture() application.Settings {
	return application.Settings{
		ID:            "settings-001",
		CoupleNames:   "Ada & Ben",
		EventDate:     EventDate(),
		Venue:         "Harbour Hall",
		MaxSeats:      40,
		SeatsPerTable: 8,
		CreatedAt:     eventEve,
		UpdatedAt:     eventEve,
	}
}

// PersistenceSettings returns SettingsFixture as a persistence.Settings row.
func PersistenceSettings() persistence.Settings {
	s := SettingsFixture()
	return persistence.Settings{
		ID:            s.ID,
		CoupleNames:   s.CoupleNames,
		EventDate:     s.EventDate,
		Venue:         s.Venue,
		MaxSeats:      s.MaxSeats,
		SeatsPerTable: s.SeatsPerTable,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func copyStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func copyIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
