package persistence

import "time"

// Settings is the singleton event configuration row.
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

// Guest is a stored guest row. AccessCode is unique across rows.
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
	Category      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MenuItem is a row of either the food_menu or drink_menu table.
type MenuItem struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	Category    string
	CreatedAt   time.Time
}

// GalleryItem is a photo or video shown in the guest gallery.
type GalleryItem struct {
	ID        string
	Title     string
	ImageURL  string
	Type      string
	CreatedAt time.Time
}

// AsoebiItem is an attire option offered to guests.
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

// PaymentDetails is the singleton bank/contact row.
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
