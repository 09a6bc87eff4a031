package application

import (
	"slices"
	"time"
)

// AdminCode is the reserved access code that resolves to the administrator.
// It is compared exactly and never stored as a guest.
const AdminCode = "ADMIN"

const (
	// DefaultMaxSeats applies when no settings row exists.
	DefaultMaxSeats = 300
	// DefaultSeatsPerTable applies when no settings row exists.
	DefaultSeatsPerTable = 10
	// MaxSeatsLimit bounds the configurable seat count.
	MaxSeatsLimit = 300
)

// Principal is the identity bound to a session.
type Principal struct {
	AccessCode string
	IsAdmin    bool
}

// IsGuest reports whether the principal is a logged in guest.
func (p Principal) IsGuest() bool {
	return !p.IsAdmin && p.AccessCode != ""
}

// Session is an authenticated login held in process memory.
type Session struct {
	Token     string
	Principal Principal
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Settings is the singleton event configuration.
type Settings struct {
	ID              string
	CoupleNames     string
	EventDate       time.Time
	Venue           string
	MaxSeats        int
	SeatsPerTable   int
	WelcomeImage    *string
	GuestPhotosLink *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DefaultSettings is returned while no settings row exists.
func DefaultSettings() Settings {
	return Settings{MaxSeats: DefaultMaxSeats, SeatsPerTable: DefaultSeatsPerTable}
}

// GuestCategory classifies guests.
type GuestCategory string

const (
	CategoryRegular GuestCategory = "regular"
	CategoryPremium GuestCategory = "premium"
	CategoryFamily  GuestCategory = "family"
)

// ParseGuestCategory returns the category named by value, or false when unknown.
func ParseGuestCategory(value string) (GuestCategory, bool) {
	switch GuestCategory(value) {
	case CategoryRegular, CategoryPremium, CategoryFamily:
		return GuestCategory(value), true
	}
	return "", false
}

// Guest is a wedding guest keyed by access code.
type Guest struct {
	ID            string
	AccessCode    string
	Name          string
	SeatNumber    *int
	Arrived       bool
	MealServed    bool
	DrinkServed   bool
	SelectedFood  *string
	SelectedDrink *string
	Category      GuestCategory
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GuestDetails pairs a guest with its derived table number.
type GuestDetails struct {
	Guest
	TableNumber *int
}

// MenuKind selects the food or drink menu.
type MenuKind string

const (
	MenuFood  MenuKind = "food"
	MenuDrink MenuKind = "drink"
)

var menuCategories = map[MenuKind][]string{
	MenuFood:  {"main", "appetizer", "dessert"},
	MenuDrink: {"alcoholic", "non-alcoholic", "water"},
}

// MenuItem is a food or drink option.
type MenuItem struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	Category    string
	CreatedAt   time.Time
}

// GalleryItem is an image or video shown to guests.
type GalleryItem struct {
	ID        string
	Title     string
	ImageURL  string
	Type      string
	CreatedAt time.Time
}

// AsoebiItem is an attire option guests can order.
type AsoebiItem struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	Price       float64
	Gender      string
	Currency    string
	CreatedAt   time.Time
}

// RegistryItem is a gift registry entry.
type RegistryItem struct {
	ID          string
	Item        string
	Description string
	ImageURL    string
	Price       float64
	Link        string
	CreatedAt   time.Time
}

// PaymentDetails is the singleton bank and contact record.
type PaymentDetails struct {
	ID             string
	AccountName    string
	AccountNumber  string
	BankName       string
	WhatsAppNumber string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WeddingPartyMember is a bridesmaid, groomsman or similar.
type WeddingPartyMember struct {
	ID        string
	Name      string
	Role      string
	ImageURL  string
	Bio       string
	Side      string
	CreatedAt time.Time
}

// WeddingParty groups members by side, each in creation order.
type WeddingParty struct {
	Bride []WeddingPartyMember
	Groom []WeddingPartyMember
}

// DashboardStats summarises guest progress for administrators.
type DashboardStats struct {
	TotalGuests    int
	Arrived        int
	Confirmed      int
	MealsServed    int
	DrinksServed   int
	MaxSeats       int
	AvailableSeats int
	PendingCodes   int
	CategoryCounts map[GuestCategory]int
}

// Collection names a removable list in the store.
type Collection string

const (
	CollectionGallery      Collection = "gallery"
	CollectionFood         Collection = "food"
	CollectionDrinks       Collection = "drinks"
	CollectionAsoebi       Collection = "asoebi"
	CollectionRegistry     Collection = "registry"
	CollectionWeddingParty Collection = "wedding_party"
)

// ParseCollection returns the collection named by value, or false when unknown.
func ParseCollection(value string) (Collection, bool) {
	switch c := Collection(value); c {
	case CollectionGallery, CollectionFood, CollectionDrinks, CollectionAsoebi, CollectionRegistry, CollectionWeddingParty:
		return c, true
	}
	return "", false
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func (s Settings) clone() Settings {
	s.WelcomeImage = cloneString(s.WelcomeImage)
	s.GuestPhotosLink = cloneString(s.GuestPhotosLink)
	return s
}

func (g Guest) clone() Guest {
	g.SeatNumber = cloneInt(g.SeatNumber)
	g.SelectedFood = cloneString(g.SelectedFood)
	g.SelectedDrink = cloneString(g.SelectedDrink)
	return g
}

func cloneGuests(guests []Guest) []Guest {
	out := make([]Guest, len(guests))
	for i, g := range guests {
		out[i] = g.clone()
	}
	return out
}

func (i GalleryItem) key() string        { return i.ID }
func (i MenuItem) key() string           { return i.ID }
func (i AsoebiItem) key() string         { return i.ID }
func (i RegistryItem) key() string       { return i.ID }
func (m WeddingPartyMember) key() string { return m.ID }

func (i *GalleryItem) stamp(id string, at time.Time)        { i.ID, i.CreatedAt = id, at }
func (i *MenuItem) stamp(id string, at time.Time)           { i.ID, i.CreatedAt = id, at }
func (i *AsoebiItem) stamp(id string, at time.Time)         { i.ID, i.CreatedAt = id, at }
func (i *RegistryItem) stamp(id string, at time.Time)       { i.ID, i.CreatedAt = id, at }
func (m *WeddingPartyMember) stamp(id string, at time.Time) { m.ID, m.CreatedAt = id, at }

// validMenuCategory reports whether category belongs to kind.
func validMenuCategory(kind MenuKind, category string) bool {
	return slices.Contains(menuCategories[kind], category)
}
