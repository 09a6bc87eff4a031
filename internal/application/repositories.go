package application

import "context"

// SettingsRepository persists the settings singleton. LatestSettings returns
// ErrNotFound while the table is empty.
type SettingsRepository interface {
	LatestSettings(ctx context.Context) (Settings, error)
	CreateSettings(ctx context.Context, settings Settings) error
	UpdateSettings(ctx context.Context, settings Settings) error
}

// PaymentDetailsRepository persists the payment details singleton.
type PaymentDetailsRepository interface {
	LatestPaymentDetails(ctx context.Context) (PaymentDetails, error)
	CreatePaymentDetails(ctx context.Context, details PaymentDetails) error
	UpdatePaymentDetails(ctx context.Context, details PaymentDetails) error
}

// GuestRepository persists guests. Updates are keyed by access code.
type GuestRepository interface {
	ListGuests(ctx context.Context) ([]Guest, error)
	CreateGuest(ctx context.Context, guest Guest) error
	UpdateGuest(ctx context.Context, guest Guest) error
}

// CollectionRepository persists an append-and-remove list keyed by surrogate id.
type CollectionRepository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
}

// Repositories groups the durable collections mirrored by the Store.
type Repositories struct {
	Settings       SettingsRepository
	PaymentDetails PaymentDetailsRepository
	Guests         GuestRepository
	Gallery        CollectionRepository[GalleryItem]
	Food           CollectionRepository[MenuItem]
	Drinks         CollectionRepository[MenuItem]
	Asoebi         CollectionRepository[AsoebiItem]
	Registry       CollectionRepository[RegistryItem]
	WeddingParty   CollectionRepository[WeddingPartyMember]
}
