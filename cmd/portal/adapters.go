package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/wedding-portal/internal/application"
	"github.com/example/wedding-portal/internal/persistence"
	"github.com/example/wedding-portal/internal/persistence/sqlite"
)

// mapStorageError translates storage sentinels into the application taxonomy
// so the store can recognise empty singletons.
func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("%w: %w", application.ErrNotFound, err)
	}
	return err
}

func newRepositories(storage *sqlite.Storage) application.Repositories {
	return application.Repositories{
		Settings:       &settingsRepositoryAdapter{repo: storage},
		PaymentDetails: &paymentDetailsRepositoryAdapter{repo: storage},
		Guests:         &guestRepositoryAdapter{repo: storage},
		Gallery: &collectionAdapter[application.GalleryItem, persistence.GalleryItem]{
			list:    storage.ListGalleryItems,
			create:  storage.CreateGalleryItem,
			remove:  storage.DeleteGalleryItem,
			toApp:   toApplicationGalleryItem,
			toStore: toPersistenceGalleryItem,
		},
		Food:   newMenuAdapter(storage, persistence.MenuFood),
		Drinks: newMenuAdapter(storage, persistence.MenuDrink),
		Asoebi: &collectionAdapter[application.AsoebiItem, persistence.AsoebiItem]{
			list:    storage.ListAsoebiItems,
			create:  storage.CreateAsoebiItem,
			remove:  storage.DeleteAsoebiItem,
			toApp:   toApplicationAsoebiItem,
			toStore: toPersistenceAsoebiItem,
		},
		Registry: &collectionAdapter[application.RegistryItem, persistence.RegistryItem]{
			list:    storage.ListRegistryItems,
			create:  storage.CreateRegistryItem,
			remove:  storage.DeleteRegistryItem,
			toApp:   toApplicationRegistryItem,
			toStore: toPersistenceRegistryItem,
		},
		WeddingParty: &collectionAdapter[application.WeddingPartyMember, persistence.WeddingPartyMember]{
			list:    storage.ListWeddingParty,
			create:  storage.CreateWeddingPartyMember,
			remove:  storage.DeleteWeddingPartyMember,
			toApp:   toApplicationWeddingPartyMember,
			toStore: toPersistenceWeddingPartyMember,
		},
	}
}

type settingsRepositoryAdapter struct {
	repo persistence.SettingsRepository
}

func (a *settingsRepositoryAdapter) LatestSettings(ctx context.Context) (application.Settings, error) {
	stored, err := a.repo.LatestSettings(ctx)
	if err != nil {
		return application.Settings{}, mapStorageError(err)
	}
	return application.Settings{
		ID:              stored.ID,
		CoupleNames:     stored.CoupleNames,
		EventDate:       stored.EventDate,
		Venue:           stored.Venue,
		MaxSeats:        stored.MaxSeats,
		SeatsPerTable:   stored.SeatsPerTable,
		WelcomeImage:    stored.WelcomeImage,
		GuestPhotosLink: stored.GuestPhotosLink,
		CreatedAt:       stored.CreatedAt,
		UpdatedAt:       stored.UpdatedAt,
	}, nil
}

func (a *settingsRepositoryAdapter) CreateSettings(ctx context.Context, settings application.Settings) error {
	return mapStorageError(a.repo.CreateSettings(ctx, toPersistenceSettings(settings)))
}

func (a *settingsRepositoryAdapter) UpdateSettings(ctx context.Context, settings application.Settings) error {
	return mapStorageError(a.repo.UpdateSettings(ctx, toPersistenceSettings(settings)))
}

func toPersistenceSettings(s application.Settings) persistence.Settings {
	return persistence.Settings{
		ID:              s.ID,
		CoupleNames:     s.CoupleNames,
		EventDate:       s.EventDate,
		Venue:           s.Venue,
		MaxSeats:        s.MaxSeats,
		SeatsPerTable:   s.SeatsPerTable,
		WelcomeImage:    s.WelcomeImage,
		GuestPhotosLink: s.GuestPhotosLink,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

type paymentDetailsRepositoryAdapter struct {
	repo persistence.PaymentDetailsRepository
}

func (a *paymentDetailsRepositoryAdapter) LatestPaymentDetails(ctx context.Context) (application.PaymentDetails, error) {
	stored, err := a.repo.LatestPaymentDetails(ctx)
	if err != nil {
		return application.PaymentDetails{}, mapStorageError(err)
	}
	return application.PaymentDetails{
		ID:             stored.ID,
		AccountName:    stored.AccountName,
		AccountNumber:  stored.AccountNumber,
		BankName:       stored.BankName,
		WhatsAppNumber: stored.WhatsAppNumber,
		CreatedAt:      stored.CreatedAt,
		UpdatedAt:      stored.UpdatedAt,
	}, nil
}

func (a *paymentDetailsRepositoryAdapter) CreatePaymentDetails(ctx context.Context, details application.PaymentDetails) error {
	return mapStorageError(a.repo.CreatePaymentDetails(ctx, toPersistencePaymentDetails(details)))
}

func (a *paymentDetailsRepositoryAdapter) UpdatePaymentDetails(ctx context.Context, details application.PaymentDetails) error {
	return mapStorageError(a.repo.UpdatePaymentDetails(ctx, toPersistencePaymentDetails(details)))
}

func toPersistencePaymentDetails(d application.PaymentDetails) persistence.PaymentDetails {
	return persistence.PaymentDetails{
		ID:             d.ID,
		AccountName:    d.AccountName,
		AccountNumber:  d.AccountNumber,
		BankName:       d.BankName,
		WhatsAppNumber: d.WhatsAppNumber,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type guestRepositoryAdapter struct {
	repo persistence.GuestRepository
}

func (a *guestRepositoryAdapter) ListGuests(ctx context.Context) ([]application.Guest, error) {
	models, err := a.repo.ListGuests(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	guests := make([]application.Guest, 0, len(models))
	for _, model := range models {
		guests = append(guests, toApplicationGuest(model))
	}
	return guests, nil
}

func (a *guestRepositoryAdapter) CreateGuest(ctx context.Context, guest application.Guest) error {
	return mapStorageError(a.repo.CreateGuest(ctx, toPersistenceGuest(guest)))
}

func (a *guestRepositoryAdapter) UpdateGuest(ctx context.Context, guest application.Guest) error {
	return mapStorageError(a.repo.UpdateGuest(ctx, toPersistenceGuest(guest)))
}

func toApplicationGuest(g persistence.Guest) application.Guest {
	category, ok := application.ParseGuestCategory(g.Category)
	if !ok {
		category = application.CategoryRegular
	}
	return application.Guest{
		ID:            g.ID,
		AccessCode:    g.AccessCode,
		Name:          g.Name,
		SeatNumber:    g.SeatNumber,
		Arrived:       g.Arrived,
		MealServed:    g.MealServed,
		DrinkServed:   g.DrinkServed,
		SelectedFood:  g.SelectedFood,
		SelectedDrink: g.SelectedDrink,
		Category:      category,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func toPersistenceGuest(g application.Guest) persistence.Guest {
	return persistence.Guest{
		ID:            g.ID,
		AccessCode:    g.AccessCode,
		Name:          g.Name,
		SeatNumber:    g.SeatNumber,
		Arrived:       g.Arrived,
		MealServed:    g.MealServed,
		DrinkServed:   g.DrinkServed,
		SelectedFood:  g.SelectedFood,
		SelectedDrink: g.SelectedDrink,
		Category:      string(g.Category),
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

// collectionAdapter bridges one storage table to an application collection.
type collectionAdapter[A, P any] struct {
	list    func(ctx context.Context) ([]P, error)
	create  func(ctx context.Context, item P) error
	remove  func(ctx context.Context, id string) error
	toApp   func(P) A
	toStore func(A) P
}

func (a *collectionAdapter[A, P]) List(ctx context.Context) ([]A, error) {
	models, err := a.list(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	items := make([]A, 0, len(models))
	for _, model := range models {
		items = append(items, a.toApp(model))
	}
	return items, nil
}

func (a *collectionAdapter[A, P]) Create(ctx context.Context, item A) error {
	return mapStorageError(a.create(ctx, a.toStore(item)))
}

func (a *collectionAdapter[A, P]) Delete(ctx context.Context, id string) error {
	return mapStorageError(a.remove(ctx, id))
}

func newMenuAdapter(repo persistence.MenuRepository, kind persistence.MenuKind) *collectionAdapter[application.MenuItem, persistence.MenuItem] {
	return &collectionAdapter[application.MenuItem, persistence.MenuItem]{
		list: func(ctx context.Context) ([]persistence.MenuItem, error) {
			return repo.ListMenuItems(ctx, kind)
		},
		create: func(ctx context.Context, item persistence.MenuItem) error {
			return repo.CreateMenuItem(ctx, kind, item)
		},
		remove: func(ctx context.Context, id string) error {
			return repo.DeleteMenuItem(ctx, kind, id)
		},
		toApp: func(m persistence.MenuItem) application.MenuItem {
			return application.MenuItem{ID: m.ID, Name: m.Name, Description: m.Description, ImageURL: m.ImageURL, Category: m.Category, CreatedAt: m.CreatedAt}
		},
		toStore: func(m application.MenuItem) persistence.MenuItem {
			return persistence.MenuItem{ID: m.ID, Name: m.Name, Description: m.Description, ImageURL: m.ImageURL, Category: m.Category, CreatedAt: m.CreatedAt}
		},
	}
}

func toApplicationGalleryItem(i persistence.GalleryItem) application.GalleryItem {
	return application.GalleryItem{ID: i.ID, Title: i.Title, ImageURL: i.ImageURL, Type: i.Type, CreatedAt: i.CreatedAt}
}

func toPersistenceGalleryItem(i application.GalleryItem) persistence.GalleryItem {
	return persistence.GalleryItem{ID: i.ID, Title: i.Title, ImageURL: i.ImageURL, Type: i.Type, CreatedAt: i.CreatedAt}
}

func toApplicationAsoebiItem(i persistence.AsoebiItem) application.AsoebiItem {
	return application.AsoebiItem{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		ImageURL:    i.ImageURL,
		Price:       i.Price,
		Gender:      i.Gender,
		Currency:    i.Currency,
		CreatedAt:   i.CreatedAt,
	}
}

func toPersistenceAsoebiItem(i application.AsoebiItem) persistence.AsoebiItem {
	return persistence.AsoebiItem{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		ImageURL:    i.ImageURL,
		Price:       i.Price,
		Gender:      i.Gender,
		Currency:    i.Currency,
		CreatedAt:   i.CreatedAt,
	}
}

func toApplicationRegistryItem(i persistence.RegistryItem) application.RegistryItem {
	return application.RegistryItem{
		ID:          i.ID,
		Item:        i.Item,
		Description: i.Description,
		ImageURL:    i.ImageURL,
		Price:       i.Price,
		Link:        i.Link,
		CreatedAt:   i.CreatedAt,
	}
}

func toPersistenceRegistryItem(i application.RegistryItem) persistence.RegistryItem {
	return persistence.RegistryItem{
		ID:          i.ID,
		Item:        i.Item,
		Description: i.Description,
		ImageURL:    i.ImageURL,
		Price:       i.Price,
		Link:        i.Link,
		CreatedAt:   i.CreatedAt,
	}
}

func toApplicationWeddingPartyMember(m persistence.WeddingPartyMember) application.WeddingPartyMember {
	return application.WeddingPartyMember{ID: m.ID, Name: m.Name, Role: m.Role, ImageURL: m.ImageURL, Bio: m.Bio, Side: m.Side, CreatedAt: m.CreatedAt}
}

func toPersistenceWeddingPartyMember(m application.WeddingPartyMember) persistence.WeddingPartyMember {
	return persistence.WeddingPartyMember{ID: m.ID, Name: m.Name, Role: m.Role, ImageURL: m.ImageURL, Bio: m.Bio, Side: m.Side, CreatedAt: m.CreatedAt}
}
