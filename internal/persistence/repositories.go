package persistence

import "context"

// SettingsRepository stores the singleton settings row. Latest returns the
// newest row by creation time or ErrNotFound when the table is empty.
type SettingsRepository interface {
	LatestSettings(ctx context.Context) (Settings, error)
	CreateSettings(ctx context.Context, settings Settings) error
	UpdateSettings(ctx context.Context, settings Settings) error
}

// PaymentDetailsRepository stores the singleton payment details row.
type PaymentDetailsRepository interface {
	LatestPaymentDetails(ctx context.Context) (PaymentDetails, error)
	CreatePaymentDetails(ctx context.Context, details PaymentDetails) error
	UpdatePaymentDetails(ctx context.Context, details PaymentDetails) error
}

// GuestRepository exposes guest rows keyed by access code.
type GuestRepository interface {
	ListGuests(ctx context.Context) ([]Guest, error)
	GetGuestByCode(ctx context.Context, accessCode string) (Guest, error)
	CreateGuest(ctx context.Context, guest Guest) error
	UpdateGuest(ctx context.Context, guest Guest) error
}

// MenuKind selects the food_menu or drink_menu table.
type MenuKind string

const (
	MenuFood  MenuKind = "food"
	MenuDrink MenuKind = "drink"
)

// MenuRepository exposes both menu tables.
type MenuRepository interface {
	ListMenuItems(ctx context.Context, kind MenuKind) ([]MenuItem, error)
	CreateMenuItem(ctx context.Context, kind MenuKind, item MenuItem) error
	DeleteMenuItem(ctx context.Context, kind MenuKind, id string) error
}

// GalleryRepository exposes gallery rows.
type GalleryRepository interface {
	ListGalleryItems(ctx context.Context) ([]GalleryItem, error)
	CreateGalleryItem(ctx context.Context, item GalleryItem) error
	DeleteGalleryItem(ctx context.Context, id string) error
}

// AsoebiRepository exposes asoebi rows.
type AsoebiRepository interface {
	ListAsoebiItems(ctx context.Context) ([]AsoebiItem, error)
	CreateAsoebiItem(ctx context.Context, item AsoebiItem) error
	DeleteAsoebiItem(ctx context.Context, id string) error
}

// RegistryRepository exposes registry rows.
type RegistryRepository interface {
	ListRegistryItems(ctx context.Context) ([]RegistryItem, error)
	CreateRegistryItem(ctx context.Context, item RegistryItem) error
	DeleteRegistryItem(ctx context.Context, id string) error
}

// WeddingPartyRepository exposes wedding party rows.
type WeddingPartyRepository interface {
	ListWeddingParty(ctx context.Context) ([]WeddingPartyMember, error)
	CreateWeddingPartyMember(ctx context.Context, member WeddingPartyMember) error
	DeleteWeddingPartyMember(ctx context.Context, id string) error
}
