package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// GuestInput captures the fields an administrator supplies for a new guest.
type GuestInput struct {
	Name       string
	Category   GuestCategory
	SeatNumber *int
}

// GuestPatch is a partial guest update. Nil fields are left unchanged.
// ClearSeat removes the seat assignment; an empty SelectedFood or
// SelectedDrink clears the choice.
type GuestPatch struct {
	Name          *string
	SeatNumber    *int
	ClearSeat     bool
	Arrived       *bool
	MealServed    *bool
	DrinkServed   *bool
	SelectedFood  *string
	SelectedDrink *string
	Category      *GuestCategory
}

// AddGuestParams wraps the data required to add a guest.
type AddGuestParams struct {
	Principal Principal
	Input     GuestInput
}

// UpdateGuestParams wraps the data required to update a guest.
type UpdateGuestParams struct {
	Principal  Principal
	AccessCode string
	Patch      GuestPatch
}

// ClaimAccessCodeParams wraps the data required to turn a pending code into a guest.
type ClaimAccessCodeParams struct {
	Principal  Principal
	AccessCode string
	Input      GuestInput
}

// GuestProfile is what a logged in guest sees about themself.
type GuestProfile struct {
	Guest       Guest
	TableNumber *int
	Settings    Settings
	Seats       SeatChart
}

// GuestService manages guest records and access codes.
type GuestService struct {
	store  *Store
	codes  *CodeGenerator
	logger *slog.Logger
}

// NewGuestService constructs a guest service.
func NewGuestService(store *Store, codes *CodeGenerator) *GuestService {
	return NewGuestServiceWithLogger(store, codes, nil)
}

// NewGuestServiceWithLogger constructs a guest service with a specified logger.
func NewGuestServiceWithLogger(store *Store, codes *CodeGenerator, logger *slog.Logger) *GuestService {
	if codes == nil {
		codes = NewCodeGenerator(nil)
	}
	return &GuestService{store: store, codes: codes, logger: logger}
}

func (s *GuestService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GuestService", operation, attrs...)
}

func (s *GuestService) ready() error {
	if s == nil || s.store == nil {
		return fmt.Errorf("GuestService is not configured")
	}
	return nil
}

// ListGuests returns guests in creation order for administrators. A non-empty
// search keeps guests whose access code or name contains it, ignoring case.
func (s *GuestService) ListGuests(ctx context.Context, principal Principal, search string) ([]GuestDetails, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}

	settings, _ := s.store.Settings()
	needle := strings.ToLower(strings.TrimSpace(search))
	guests := s.store.Guests()
	result := make([]GuestDetails, 0, len(guests))
	for _, g := range guests {
		if needle != "" &&
			!strings.Contains(strings.ToLower(g.AccessCode), needle) &&
			!strings.Contains(strings.ToLower(g.Name), needle) {
			continue
		}
		result = append(result, GuestDetails{Guest: g, TableNumber: tableFor(g.SeatNumber, settings.SeatsPerTable)})
	}
	return result, nil
}

// Guest returns one guest with its table number for administrators.
func (s *GuestService) Guest(ctx context.Context, principal Principal, code string) (GuestDetails, error) {
	if err := s.ready(); err != nil {
		return GuestDetails{}, err
	}
	if !principal.IsAdmin {
		return GuestDetails{}, ErrUnauthorized
	}
	guest, ok := s.store.GuestByCode(code)
	if !ok {
		return GuestDetails{}, ErrNotFound
	}
	settings, _ := s.store.Settings()
	return GuestDetails{Guest: guest, TableNumber: tableFor(guest.SeatNumber, settings.SeatsPerTable)}, nil
}

// AddGuest creates a guest with a freshly generated access code.
func (s *GuestService) AddGuest(ctx context.Context, params AddGuestParams) (guest Guest, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "AddGuest", principalAttrs(params.Principal)...)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add guest", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("access_code", guest.AccessCode).InfoContext(ctx, "guest added")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var candidate Guest
	if candidate, err = s.newGuest(params.Input); err != nil {
		return
	}

	var created []Guest
	created, err = s.store.AddGuests(ctx, []Guest{candidate}, s.codes.Generate)
	if len(created) == 1 {
		guest = created[0]
	}
	return
}

// newGuest validates input for a guest that has not been stored yet. Seats
// are checked by the store under its write lock.
func (s *GuestService) newGuest(input GuestInput) (Guest, error) {
	vErr := &ValidationError{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr.add("name", "name is required")
	}
	category := CategoryRegular
	if input.Category != "" {
		parsed, ok := ParseGuestCategory(string(input.Category))
		if !ok {
			vErr.add("category", "category must be regular, premium or family")
		}
		category = parsed
	}
	if vErr.HasErrors() {
		return Guest{}, vErr
	}
	return Guest{Name: name, Category: category, SeatNumber: cloneInt(input.SeatNumber)}, nil
}

// UpdateGuest applies an administrator's partial update to a guest.
func (s *GuestService) UpdateGuest(ctx context.Context, params UpdateGuestParams) (guest Guest, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateGuest", append(principalAttrs(params.Principal), "target_code", params.AccessCode)...)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update guest", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "guest updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	settings, _ := s.store.Settings()
	foodNames := menuNames(s.store.MenuItems(MenuFood))
	drinkNames := menuNames(s.store.MenuItems(MenuDrink))
	patch := params.Patch

	guest, err = s.store.UpdateGuest(ctx, params.AccessCode, func(current Guest, others []Guest) (Guest, error) {
		vErr := &ValidationError{}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				vErr.add("name", "name is required")
			}
			current.Name = name
		}
		if patch.Category != nil {
			category, ok := ParseGuestCategory(string(*patch.Category))
			if !ok {
				vErr.add("category", "category must be regular, premium or family")
			}
			current.Category = category
		}
		switch {
		case patch.ClearSeat:
			current.SeatNumber = nil
		case patch.SeatNumber != nil:
			vErr.merge(validateSeat(*patch.SeatNumber, settings.MaxSeats, others))
			current.SeatNumber = cloneInt(patch.SeatNumber)
		}
		if patch.Arrived != nil {
			current.Arrived = *patch.Arrived
		}
		if patch.MealServed != nil {
			current.MealServed = *patch.MealServed
		}
		if patch.DrinkServed != nil {
			current.DrinkServed = *patch.DrinkServed
		}
		if patch.SelectedFood != nil {
			current.SelectedFood = menuChoice(vErr, "selected_food", *patch.SelectedFood, foodNames)
		}
		if patch.SelectedDrink != nil {
			current.SelectedDrink = menuChoice(vErr, "selected_drink", *patch.SelectedDrink, drinkNames)
		}
		if vErr.HasErrors() {
			return Guest{}, vErr
		}
		return current, nil
	})
	return
}

func menuNames(items []MenuItem) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

// menuChoice validates a menu selection. An empty value clears the choice.
func menuChoice(vErr *ValidationError, field, value string, names []string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !slices.Contains(names, value) {
		vErr.add(field, fmt.Sprintf("%q is not on the menu", value))
	}
	return &value
}

// ImportCSV creates one guest per valid CSV line, each with a fresh access
// code. Nothing is created when the file has no name column or no guests.
func (s *GuestService) ImportCSV(ctx context.Context, principal Principal, r io.Reader) (guests []Guest, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ImportCSV", principalAttrs(principal)...)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to import guests", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("imported", len(guests)).InfoContext(ctx, "guests imported")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var rows []GuestImportRow
	if rows, err = ParseGuestCSV(r); err != nil {
		return
	}

	candidates := make([]Guest, len(rows))
	for i, row := range rows {
		candidates[i] = Guest{Name: row.Name, Category: row.Category}
	}
	guests, err = s.store.AddGuests(ctx, candidates, s.codes.Generate)
	return
}

// GenerateAccessCodes draws n unused codes and registers them as pending.
// Pending codes do not log in until claimed with ClaimAccessCode.
func (s *GuestService) GenerateAccessCodes(ctx context.Context, principal Principal, n int) (codes []string, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "GenerateAccessCodes", append(principalAttrs(principal), "requested", n)...)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to generate access codes", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "access codes generated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	codes, err = s.store.ReservePendingCodes(n, s.codes.Generate)
	return
}

// PendingCodes lists generated codes not yet claimed by a guest.
func (s *GuestService) PendingCodes(ctx context.Context, principal Principal) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	return s.store.PendingCodes(), nil
}

// ClaimAccessCode creates a guest holding a previously generated pending code.
func (s *GuestService) ClaimAccessCode(ctx context.Context, params ClaimAccessCodeParams) (guest Guest, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ClaimAccessCode", append(principalAttrs(params.Principal), "target_code", params.AccessCode)...)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to claim access code", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "access code claimed")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var candidate Guest
	if candidate, err = s.newGuest(params.Input); err != nil {
		return
	}
	candidate.AccessCode = params.AccessCode
	guest, err = s.store.ClaimPendingCode(ctx, candidate)
	return
}

// Profile returns the logged in guest's record, table and seat chart.
func (s *GuestService) Profile(ctx context.Context, principal Principal) (GuestProfile, error) {
	if err := s.ready(); err != nil {
		return GuestProfile{}, err
	}
	if !principal.IsGuest() {
		return GuestProfile{}, ErrUnauthorized
	}

	guest, ok := s.store.GuestByCode(principal.AccessCode)
	if !ok {
		return GuestProfile{}, ErrNotFound
	}
	settings, _ := s.store.Settings()
	return GuestProfile{
		Guest:       guest,
		TableNumber: tableFor(guest.SeatNumber, settings.SeatsPerTable),
		Settings:    settings,
		Seats:       BuildSeatChart(settings.MaxSeats, settings.SeatsPerTable, s.store.Guests(), principal),
	}, nil
}

// ConfirmArrival marks the logged in guest as arrived. It is the only change
// a guest can make to their own record.
func (s *GuestService) ConfirmArrival(ctx context.Context, principal Principal) (guest Guest, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ConfirmArrival", principalAttrs(principal)...)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to confirm arrival", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "arrival confirmed")
	}()

	if !principal.IsGuest() {
		err = ErrUnauthorized
		return
	}

	guest, err = s.store.UpdateGuest(ctx, principal.AccessCode, func(current Guest, _ []Guest) (Guest, error) {
		current.Arrived = true
		return current, nil
	})
	return
}

// SeatChart renders seat occupancy for any identity.
func (s *GuestService) SeatChart(ctx context.Context, principal Principal) (SeatChart, error) {
	if err := s.ready(); err != nil {
		return SeatChart{}, err
	}
	settings, _ := s.store.Settings()
	return BuildSeatChart(settings.MaxSeats, settings.SeatsPerTable, s.store.Guests(), principal), nil
}
