package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/wedding-portal/internal/logging"
)

// State is a point-in-time copy of every mirrored collection.
type State struct {
	Settings       *Settings
	PaymentDetails *PaymentDetails
	Guests         []Guest
	Gallery        []GalleryItem
	Food           []MenuItem
	Drinks         []MenuItem
	Asoebi         []AsoebiItem
	Registry       []RegistryItem
	WeddingParty   []WeddingPartyMember
	PendingCodes   []string
}

// CodeDrawer draws n access codes for which taken reports false.
type CodeDrawer func(n int, taken func(code string) bool) ([]string, error)

type entity[T any] interface {
	*T
	key() string
	stamp(id string, at time.Time)
}

type collection[T any] struct {
	name  string
	items []T
	repo  CollectionRepository[T]
}

// Store is the in-memory mirror of durable state.
//
// Every mutator patches the mirror first and then issues the persistence
// write. A failed write is logged and returned as *PersistenceError while the
// mirror stays ahead of durable state; Reload discards the divergence.
// Mutators are serialised by writeMu so writes reach storage in mirror order;
// readers only contend on mu while a mirror patch is applied. Concurrent
// administrators therefore see last-write-wins semantics.
type Store struct {
	settingsRepo SettingsRepository
	paymentRepo  PaymentDetailsRepository
	guestRepo    GuestRepository
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger

	writeMu sync.Mutex
	mu      sync.RWMutex

	settings *Settings
	payment  *PaymentDetails
	guests   []Guest
	pending  []string

	gallery      collection[GalleryItem]
	food         collection[MenuItem]
	drinks       collection[MenuItem]
	asoebi       collection[AsoebiItem]
	registry     collection[RegistryItem]
	weddingParty collection[WeddingPartyMember]
}

// NewStore constructs an empty store. Call Load before serving requests.
func NewStore(repos Repositories, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Store {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		settingsRepo: repos.Settings,
		paymentRepo:  repos.PaymentDetails,
		guestRepo:    repos.Guests,
		idGenerator:  idGenerator,
		now:          now,
		logger:       logging.OrDefault(logger).With("component", "store"),
		gallery:      collection[GalleryItem]{name: string(CollectionGallery), repo: repos.Gallery},
		food:         collection[MenuItem]{name: string(CollectionFood), repo: repos.Food},
		drinks:       collection[MenuItem]{name: string(CollectionDrinks), repo: repos.Drinks},
		asoebi:       collection[AsoebiItem]{name: string(CollectionAsoebi), repo: repos.Asoebi},
		registry:     collection[RegistryItem]{name: string(CollectionRegistry), repo: repos.Registry},
		weddingParty: collection[WeddingPartyMember]{name: string(CollectionWeddingParty), repo: repos.WeddingParty},
	}
}

// Load reads every collection once and replaces the mirror. Pending access
// codes live only in memory and survive a reload.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var (
		loaded State
		err    error
	)
	if loaded.Settings, err = latest(ctx, s.settingsRepo, SettingsRepository.LatestSettings); err != nil {
		return s.loadFailure(ctx, "settings", err)
	}
	if loaded.PaymentDetails, err = latest(ctx, s.paymentRepo, PaymentDetailsRepository.LatestPaymentDetails); err != nil {
		return s.loadFailure(ctx, "payment_details", err)
	}
	if s.guestRepo != nil {
		if loaded.Guests, err = s.guestRepo.ListGuests(ctx); err != nil {
			return s.loadFailure(ctx, "guests", err)
		}
	}
	if loaded.Gallery, err = listCollection(ctx, &s.gallery); err != nil {
		return s.loadFailure(ctx, s.gallery.name, err)
	}
	if loaded.Food, err = listCollection(ctx, &s.food); err != nil {
		return s.loadFailure(ctx, s.food.name, err)
	}
	if loaded.Drinks, err = listCollection(ctx, &s.drinks); err != nil {
		return s.loadFailure(ctx, s.drinks.name, err)
	}
	if loaded.Asoebi, err = listCollection(ctx, &s.asoebi); err != nil {
		return s.loadFailure(ctx, s.asoebi.name, err)
	}
	if loaded.Registry, err = listCollection(ctx, &s.registry); err != nil {
		return s.loadFailure(ctx, s.registry.name, err)
	}
	if loaded.WeddingParty, err = listCollection(ctx, &s.weddingParty); err != nil {
		return s.loadFailure(ctx, s.weddingParty.name, err)
	}

	s.mu.Lock()
	s.settings = loaded.Settings
	s.payment = loaded.PaymentDetails
	s.guests = slices.DeleteFunc(loaded.Guests, func(g Guest) bool { return g.AccessCode == AdminCode })
	s.pending = slices.DeleteFunc(s.pending, func(code string) bool { return s.guestIndexLocked(code) >= 0 })
	s.gallery.items = loaded.Gallery
	s.food.items = loaded.Food
	s.drinks.items = loaded.Drinks
	s.asoebi.items = loaded.Asoebi
	s.registry.items = loaded.Registry
	s.weddingParty.items = loaded.WeddingParty
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "store loaded",
		"guests", len(loaded.Guests),
		"gallery", len(loaded.Gallery),
		"food", len(loaded.Food),
		"drinks", len(loaded.Drinks),
		"asoebi", len(loaded.Asoebi),
		"registry", len(loaded.Registry),
		"wedding_party", len(loaded.WeddingParty),
	)
	return nil
}

// Reload re-reads durable state, discarding any divergence left by failed writes.
func (s *Store) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

func latest[R any, T any](ctx context.Context, repo R, fetch func(R, context.Context) (T, error)) (*T, error) {
	if any(repo) == nil {
		return nil, nil
	}
	value, err := fetch(repo, ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func listCollection[T any](ctx context.Context, c *collection[T]) ([]T, error) {
	if c.repo == nil {
		return nil, nil
	}
	return c.repo.List(ctx)
}

func (s *Store) loadFailure(ctx context.Context, collection string, err error) error {
	s.logger.ErrorContext(ctx, "failed to load collection", "collection", collection, "error", err)
	return &PersistenceError{Op: "load", Collection: collection, Err: err}
}

func (s *Store) writeFailure(ctx context.Context, op, collection string, err error) error {
	s.logger.ErrorContext(ctx, "persistence write failed, mirror is ahead of durable state",
		"operation", op, "collection", collection, "error", err)
	return &PersistenceError{Op: op, Collection: collection, Err: err}
}

// Snapshot returns a deep copy of the mirror.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := State{
		Guests:       cloneGuests(s.guests),
		Gallery:      slices.Clone(s.gallery.items),
		Food:         slices.Clone(s.food.items),
		Drinks:       slices.Clone(s.drinks.items),
		Asoebi:       slices.Clone(s.asoebi.items),
		Registry:     slices.Clone(s.registry.items),
		WeddingParty: slices.Clone(s.weddingParty.items),
		PendingCodes: slices.Clone(s.pending),
	}
	if s.settings != nil {
		settings := s.settings.clone()
		state.Settings = &settings
	}
	if s.payment != nil {
		payment := *s.payment
		state.PaymentDetails = &payment
	}
	return state
}

// Settings returns the stored settings, or DefaultSettings and false when none exist.
func (s *Store) Settings() (Settings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return DefaultSettings(), false
	}
	return s.settings.clone(), true
}

// SaveSettings overwrites the settings singleton in place, or inserts it when
// no row exists yet.
func (s *Store) SaveSettings(ctx context.Context, settings Settings) (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now()
	existing := s.settings
	if existing != nil {
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
	} else {
		settings.ID = s.idGenerator()
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now

	mirrored := settings.clone()
	s.mu.Lock()
	s.settings = &mirrored
	s.mu.Unlock()

	if s.settingsRepo == nil {
		return settings, nil
	}
	if existing != nil {
		if err := s.settingsRepo.UpdateSettings(ctx, settings); err != nil {
			return settings, s.writeFailure(ctx, "update", "settings", err)
		}
		return settings, nil
	}
	if err := s.settingsRepo.CreateSettings(ctx, settings); err != nil {
		return settings, s.writeFailure(ctx, "create", "settings", err)
	}
	return settings, nil
}

// PaymentDetails returns the stored payment details, or false when none exist.
func (s *Store) PaymentDetails() (PaymentDetails, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.payment == nil {
		return PaymentDetails{}, false
	}
	return *s.payment, true
}

// SavePaymentDetails overwrites the payment details singleton in place, or
// inserts it when no row exists yet.
func (s *Store) SavePaymentDetails(ctx context.Context, details PaymentDetails) (PaymentDetails, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now()
	existing := s.payment
	if existing != nil {
		details.ID = existing.ID
		details.CreatedAt = existing.CreatedAt
	} else {
		details.ID = s.idGenerator()
		details.CreatedAt = now
	}
	details.UpdatedAt = now

	mirrored := details
	s.mu.Lock()
	s.payment = &mirrored
	s.mu.Unlock()

	if s.paymentRepo == nil {
		return details, nil
	}
	if existing != nil {
		if err := s.paymentRepo.UpdatePaymentDetails(ctx, details); err != nil {
			return details, s.writeFailure(ctx, "update", "payment_details", err)
		}
		return details, nil
	}
	if err := s.paymentRepo.CreatePaymentDetails(ctx, details); err != nil {
		return details, s.writeFailure(ctx, "create", "payment_details", err)
	}
	return details, nil
}

// Guests returns every guest in creation order.
func (s *Store) Guests() []Guest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneGuests(s.guests)
}

// GuestByCode returns the guest holding code. Pending codes are not guests.
func (s *Store) GuestByCode(code string) (Guest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.guestIndexLocked(code)
	if idx < 0 {
		return Guest{}, false
	}
	return s.guests[idx].clone(), true
}

func (s *Store) guestIndexLocked(code string) int {
	return slices.IndexFunc(s.guests, func(g Guest) bool { return g.AccessCode == code })
}

// codeTakenLocked reports whether code is reserved, held by a guest or pending.
// Callers hold writeMu.
func (s *Store) codeTakenLocked(code string) bool {
	return code == AdminCode || s.guestIndexLocked(code) >= 0 || slices.Contains(s.pending, code)
}

// seatsFreeLocked validates the seats requested by incoming guests against
// the configured seat count, the stored guests and each other. Callers hold
// writeMu.
func (s *Store) seatsFreeLocked(incoming []Guest) error {
	settings, _ := s.Settings()
	holders := cloneGuests(s.guests)
	for _, g := range incoming {
		if g.SeatNumber == nil {
			continue
		}
		if vErr := validateSeat(*g.SeatNumber, settings.MaxSeats, holders); vErr.HasErrors() {
			return vErr
		}
		holders = append(holders, g)
	}
	return nil
}

// AddGuests appends guests in order. Guests without an access code receive a
// fresh one from draw, unique against every known code. Requested seats must
// be in range and unheld.
func (s *Store) AddGuests(ctx context.Context, guests []Guest, draw CodeDrawer) ([]Guest, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.seatsFreeLocked(guests); err != nil {
		return nil, err
	}

	missing := 0
	for _, g := range guests {
		if g.AccessCode == "" {
			missing++
		} else if s.codeTakenLocked(g.AccessCode) {
			return nil, newValidationError("access_code", fmt.Sprintf("access code %s is already in use", g.AccessCode))
		}
	}
	var codes []string
	if missing > 0 {
		if draw == nil {
			return nil, errors.New("store: access code drawer not configured")
		}
		var err error
		if codes, err = draw(missing, s.codeTakenLocked); err != nil {
			return nil, err
		}
	}

	now := s.now()
	created := make([]Guest, len(guests))
	for i, g := range guests {
		if g.AccessCode == "" {
			g.AccessCode, codes = codes[0], codes[1:]
		}
		if g.Category == "" {
			g.Category = CategoryRegular
		}
		g.ID = s.idGenerator()
		g.CreatedAt = now
		g.UpdatedAt = now
		created[i] = g
	}

	s.mu.Lock()
	s.guests = append(s.guests, cloneGuests(created)...)
	s.mu.Unlock()

	return created, s.persistGuests(ctx, created)
}

func (s *Store) persistGuests(ctx context.Context, guests []Guest) error {
	if s.guestRepo == nil {
		return nil
	}
	var errs []error
	for _, g := range guests {
		if err := s.guestRepo.CreateGuest(ctx, g); err != nil {
			errs = append(errs, fmt.Errorf("guest %s: %w", g.AccessCode, err))
		}
	}
	if len(errs) > 0 {
		return s.writeFailure(ctx, "create", "guests", errors.Join(errs...))
	}
	return nil
}

// UpdateGuest applies change to the guest holding code. change receives a copy
// of the guest and of every other guest; returning an error aborts before any
// write. Identity fields cannot be changed.
func (s *Store) UpdateGuest(ctx context.Context, code string, change func(current Guest, others []Guest) (Guest, error)) (Guest, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	idx := s.guestIndexLocked(code)
	if idx < 0 {
		return Guest{}, ErrNotFound
	}
	current := s.guests[idx]
	others := make([]Guest, 0, len(s.guests)-1)
	for i, g := range s.guests {
		if i != idx {
			others = append(others, g.clone())
		}
	}

	updated, err := change(current.clone(), others)
	if err != nil {
		return Guest{}, err
	}
	updated.ID = current.ID
	updated.AccessCode = current.AccessCode
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now()

	s.mu.Lock()
	s.guests[idx] = updated.clone()
	s.mu.Unlock()

	if s.guestRepo == nil {
		return updated, nil
	}
	if err := s.guestRepo.UpdateGuest(ctx, updated); err != nil {
		return updated, s.writeFailure(ctx, "update", "guests", err)
	}
	return updated, nil
}

// PendingCodes returns generated codes that no guest holds yet.
func (s *Store) PendingCodes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.pending)
}

// ReservePendingCodes draws n fresh codes and remembers them as pending.
// Pending codes are held in memory only and do not authenticate.
func (s *Store) ReservePendingCodes(n int, draw CodeDrawer) ([]string, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	codes, err := draw(n, s.codeTakenLocked)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.pending = append(s.pending, codes...)
	s.mu.Unlock()
	return slices.Clone(codes), nil
}

// ClaimPendingCode turns a pending code into a guest. It returns ErrNotFound
// when guest.AccessCode is not pending and a ValidationError when the
// requested seat is out of range or held.
func (s *Store) ClaimPendingCode(ctx context.Context, guest Guest) (Guest, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	idx := slices.Index(s.pending, guest.AccessCode)
	if idx < 0 {
		return Guest{}, ErrNotFound
	}
	if err := s.seatsFreeLocked([]Guest{guest}); err != nil {
		return Guest{}, err
	}

	now := s.now()
	if guest.Category == "" {
		guest.Category = CategoryRegular
	}
	guest.ID = s.idGenerator()
	guest.CreatedAt = now
	guest.UpdatedAt = now

	s.mu.Lock()
	s.pending = slices.Delete(s.pending, idx, idx+1)
	s.guests = append(s.guests, guest.clone())
	s.mu.Unlock()

	return guest, s.persistGuests(ctx, []Guest{guest})
}

// GalleryItems returns gallery items in creation order.
func (s *Store) GalleryItems() []GalleryItem { return listItems(s, &s.gallery) }

// AddGalleryItem appends a gallery item.
func (s *Store) AddGalleryItem(ctx context.Context, item GalleryItem) (GalleryItem, error) {
	return addItem(ctx, s, &s.gallery, item)
}

// RemoveGalleryItem removes the gallery item with id.
func (s *Store) RemoveGalleryItem(ctx context.Context, id string) error {
	return removeItem(ctx, s, &s.gallery, id)
}

func (s *Store) menu(kind MenuKind) (*collection[MenuItem], error) {
	switch kind {
	case MenuFood:
		return &s.food, nil
	case MenuDrink:
		return &s.drinks, nil
	}
	return nil, ErrNotFound
}

// MenuItems returns the food or drink menu in creation order.
func (s *Store) MenuItems(kind MenuKind) []MenuItem {
	c, err := s.menu(kind)
	if err != nil {
		return nil
	}
	return listItems(s, c)
}

// AddMenuItem appends an item to the food or drink menu.
func (s *Store) AddMenuItem(ctx context.Context, kind MenuKind, item MenuItem) (MenuItem, error) {
	c, err := s.menu(kind)
	if err != nil {
		return MenuItem{}, err
	}
	return addItem(ctx, s, c, item)
}

// RemoveMenuItem removes the menu item with id.
func (s *Store) RemoveMenuItem(ctx context.Context, kind MenuKind, id string) error {
	c, err := s.menu(kind)
	if err != nil {
		return err
	}
	return removeItem(ctx, s, c, id)
}

// AsoebiItems returns asoebi items in creation order.
func (s *Store) AsoebiItems() []AsoebiItem { return listItems(s, &s.asoebi) }

// AsoebiItem returns the asoebi item with id.
func (s *Store) AsoebiItem(id string) (AsoebiItem, bool) { return findItem(s, &s.asoebi, id) }

// AddAsoebiItem appends an asoebi item.
func (s *Store) AddAsoebiItem(ctx context.Context, item AsoebiItem) (AsoebiItem, error) {
	return addItem(ctx, s, &s.asoebi, item)
}

// RemoveAsoebiItem removes the asoebi item with id.
func (s *Store) RemoveAsoebiItem(ctx context.Context, id string) error {
	return removeItem(ctx, s, &s.asoebi, id)
}

// RegistryItems returns registry items in creation order.
func (s *Store) RegistryItems() []RegistryItem { return listItems(s, &s.registry) }

// AddRegistryItem appends a registry item.
func (s *Store) AddRegistryItem(ctx context.Context, item RegistryItem) (RegistryItem, error) {
	return addItem(ctx, s, &s.registry, item)
}

// RemoveRegistryItem removes the registry item with id.
func (s *Store) RemoveRegistryItem(ctx context.Context, id string) error {
	return removeItem(ctx, s, &s.registry, id)
}

// WeddingPartyMembers returns wedding party members in creation order.
func (s *Store) WeddingPartyMembers() []WeddingPartyMember { return listItems(s, &s.weddingParty) }

// AddWeddingPartyMember appends a wedding party member.
func (s *Store) AddWeddingPartyMember(ctx context.Context, member WeddingPartyMember) (WeddingPartyMember, error) {
	return addItem(ctx, s, &s.weddingParty, member)
}

// RemoveWeddingPartyMember removes the wedding party member with id.
func (s *Store) RemoveWeddingPartyMember(ctx context.Context, id string) error {
	return removeItem(ctx, s, &s.weddingParty, id)
}

// RemoveAt removes the item at display position index of collection, resolved
// against creation order at the time of the call. It returns the removed id.
func (s *Store) RemoveAt(ctx context.Context, c Collection, index int) (string, error) {
	switch c {
	case CollectionGallery:
		return removeItemAt(ctx, s, &s.gallery, index)
	case CollectionFood:
		return removeItemAt(ctx, s, &s.food, index)
	case CollectionDrinks:
		return removeItemAt(ctx, s, &s.drinks, index)
	case CollectionAsoebi:
		return removeItemAt(ctx, s, &s.asoebi, index)
	case CollectionRegistry:
		return removeItemAt(ctx, s, &s.registry, index)
	case CollectionWeddingParty:
		return removeItemAt(ctx, s, &s.weddingParty, index)
	}
	return "", ErrNotFound
}

func listItems[T any](s *Store, c *collection[T]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(c.items)
}

func findItem[T any, P entity[T]](s *Store, c *collection[T], id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range c.items {
		if P(&c.items[i]).key() == id {
			return c.items[i], true
		}
	}
	var zero T
	return zero, false
}

func addItem[T any, P entity[T]](ctx context.Context, s *Store, c *collection[T], item T) (T, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	P(&item).stamp(s.idGenerator(), s.now())

	s.mu.Lock()
	c.items = append(c.items, item)
	s.mu.Unlock()

	if c.repo == nil {
		return item, nil
	}
	if err := c.repo.Create(ctx, item); err != nil {
		return item, s.writeFailure(ctx, "create", c.name, err)
	}
	return item, nil
}

func removeItem[T any, P entity[T]](ctx context.Context, s *Store, c *collection[T], id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return removeItemLocked[T, P](ctx, s, c, id)
}

func removeItemAt[T any, P entity[T]](ctx context.Context, s *Store, c *collection[T], index int) (string, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if index < 0 || index >= len(c.items) {
		return "", ErrNotFound
	}
	id := P(&c.items[index]).key()
	return id, removeItemLocked[T, P](ctx, s, c, id)
}

// removeItemLocked requires writeMu.
func removeItemLocked[T any, P entity[T]](ctx context.Context, s *Store, c *collection[T], id string) error {
	idx := slices.IndexFunc(c.items, func(item T) bool { return P(&item).key() == id })
	if idx < 0 {
		return ErrNotFound
	}

	s.mu.Lock()
	c.items = slices.Delete(c.items, idx, idx+1)
	s.mu.Unlock()

	if c.repo == nil {
		return nil
	}
	if err := c.repo.Delete(ctx, id); err != nil {
		return s.writeFailure(ctx, "delete", c.name, err)
	}
	return nil
}
