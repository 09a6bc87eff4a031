package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// SettingsInput captures the editable event settings.
type SettingsInput struct {
	CoupleNames     string
	EventDate       time.Time
	Venue           string
	MaxSeats        int
	SeatsPerTable   int
	WelcomeImage    *string
	GuestPhotosLink *string
}

// UpdateSettingsParams wraps the data required to update settings.
type UpdateSettingsParams struct {
	Principal Principal
	Input     SettingsInput
}

// SettingsService manages the event settings singleton and derived views.
type SettingsService struct {
	store  *Store
	now    func() time.Time
	logger *slog.Logger
}

// NewSettingsService constructs a settings service.
func NewSettingsService(store *Store, now func() time.Time) *SettingsService {
	return NewSettingsServiceWithLogger(store, now, nil)
}

// NewSettingsServiceWithLogger constructs a settings service with a specified logger.
func NewSettingsServiceWithLogger(store *Store, now func() time.Time, logger *slog.Logger) *SettingsService {
	if now == nil {
		now = time.Now
	}
	return &SettingsService{store: store, now: now, logger: logger}
}

func (s *SettingsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SettingsService", operation, attrs...)
}

// GetSettings returns the current settings, or defaults when none were saved.
func (s *SettingsService) GetSettings(ctx context.Context, principal Principal) (Settings, error) {
	if s == nil || s.store == nil {
		return Settings{}, fmt.Errorf("SettingsService is not configured")
	}
	settings, _ := s.store.Settings()
	return settings, nil
}

// UpdateSettings validates input and overwrites the settings singleton.
func (s *SettingsService) UpdateSettings(ctx context.Context, params UpdateSettingsParams) (settings Settings, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("SettingsService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateSettings", principalAttrs(params.Principal)...)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update settings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("settings_id", settings.ID).InfoContext(ctx, "settings updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateSettingsInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	input := params.Input
	settings, err = s.store.SaveSettings(ctx, Settings{
		CoupleNames:     strings.TrimSpace(input.CoupleNames),
		EventDate:       input.EventDate.UTC(),
		Venue:           strings.TrimSpace(input.Venue),
		MaxSeats:        input.MaxSeats,
		SeatsPerTable:   input.SeatsPerTable,
		WelcomeImage:    normalizeOptionalString(input.WelcomeImage),
		GuestPhotosLink: normalizeOptionalString(input.GuestPhotosLink),
	})
	return
}

// Stats returns dashboard counters for administrators.
func (s *SettingsService) Stats(ctx context.Context, principal Principal) (DashboardStats, error) {
	if s == nil || s.store == nil {
		return DashboardStats{}, fmt.Errorf("SettingsService is not configured")
	}
	if !principal.IsAdmin {
		return DashboardStats{}, ErrUnauthorized
	}

	settings, _ := s.store.Settings()
	guests := s.store.Guests()
	stats := DashboardStats{
		TotalGuests:    len(guests),
		MaxSeats:       settings.MaxSeats,
		PendingCodes:   len(s.store.PendingCodes()),
		CategoryCounts: map[GuestCategory]int{CategoryRegular: 0, CategoryPremium: 0, CategoryFamily: 0},
	}
	takenSeats := make(map[int]struct{})
	for _, g := range guests {
		if g.Arrived {
			stats.Arrived++
		}
		if g.SeatNumber != nil {
			stats.Confirmed++
			if *g.SeatNumber >= 1 && *g.SeatNumber <= settings.MaxSeats {
				takenSeats[*g.SeatNumber] = struct{}{}
			}
		}
		if g.MealServed {
			stats.MealsServed++
		}
		if g.DrinkServed {
			stats.DrinksServed++
		}
		stats.CategoryCounts[g.Category]++
	}
	stats.AvailableSeats = settings.MaxSeats - len(takenSeats)
	return stats, nil
}

// Countdown returns the time remaining until the event.
func (s *SettingsService) Countdown(ctx context.Context, principal Principal) (Countdown, error) {
	if s == nil || s.store == nil {
		return Countdown{}, fmt.Errorf("SettingsService is not configured")
	}
	settings, ok := s.store.Settings()
	if !ok || settings.EventDate.IsZero() {
		return Countdown{}, ErrNotFound
	}
	return CountdownUntil(settings.EventDate, s.now()), nil
}

func validateSettingsInput(input SettingsInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.CoupleNames) == "" {
		vErr.add("couple_names", "couple names are required")
	}
	if input.EventDate.IsZero() {
		vErr.add("event_date", "event date is required")
	}
	if input.MaxSeats < 1 || input.MaxSeats > MaxSeatsLimit {
		vErr.add("max_seats", fmt.Sprintf("max seats must be between 1 and %d", MaxSeatsLimit))
	}
	if input.SeatsPerTable < 1 {
		vErr.add("seats_per_table", "seats per table must be at least 1")
	}
	vErr.merge(validateOptionalURL("welcome_image", input.WelcomeImage))
	vErr.merge(validateOptionalURL("guest_photos_link", input.GuestPhotosLink))

	return vErr
}

func validateOptionalURL(field string, value *string) *ValidationError {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return validateURL(field, *value)
}

func validateURL(field, value string) *ValidationError {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return newValidationError(field, "must be an absolute http or https URL")
	}
	return nil
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
