package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/wedding-portal/internal/application"
)

type settingsService interface {
	GetSettings(ctx context.Context, principal application.Principal) (application.Settings, error)
	UpdateSettings(ctx context.Context, params application.UpdateSettingsParams) (application.Settings, error)
	Stats(ctx context.Context, principal application.Principal) (application.DashboardStats, error)
	Countdown(ctx context.Context, principal application.Principal) (application.Countdown, error)
}

// SettingsHandler serves event settings, the admin dashboard and the countdown.
type SettingsHandler struct {
	service   settingsService
	responder responder
	logger    *slog.Logger
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(service settingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{service: service, responder: newResponder(logger), logger: logger}
}

func (h *SettingsHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "SettingsHandler", operation, attrs...)
}

// Get handles GET /settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	settings, err := h.service.GetSettings(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingsResponse{Settings: toSettingsDTO(settings)})
}

// Update handles PUT /settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode settings request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Update")
	settings, err := h.service.UpdateSettings(r.Context(), application.UpdateSettingsParams{Principal: principal, Input: input})
	if err != nil {
		logger.ErrorContext(r.Context(), "settings update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "settings updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingsResponse{Settings: toSettingsDTO(settings)})
}

// Dashboard handles GET /dashboard.
func (h *SettingsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	stats, err := h.service.Stats(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	categories := make(map[string]int, len(stats.CategoryCounts))
	for category, n := range stats.CategoryCounts {
		categories[string(category)] = n
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dashboardResponse{
		TotalGuests:    stats.TotalGuests,
		Arrived:        stats.Arrived,
		Confirmed:      stats.Confirmed,
		MealsServed:    stats.MealsServed,
		DrinksServed:   stats.DrinksServed,
		MaxSeats:       stats.MaxSeats,
		AvailableSeats: stats.AvailableSeats,
		PendingCodes:   stats.PendingCodes,
		Categories:     categories,
	})
}

// Countdown handles GET /countdown.
func (h *SettingsHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	countdown, err := h.service.Countdown(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, countdownResponse{
		EventDate: countdown.EventDate.UTC().Format(time.RFC3339),
		Days:      countdown.Days,
		Hours:     countdown.Hours,
		Minutes:   countdown.Minutes,
		Seconds:   countdown.Seconds,
		Started:   countdown.Started,
	})
}

type settingsRequest struct {
	CoupleNames     string  `json:"couple_names"`
	EventDate       string  `json:"event_date"`
	Venue           string  `json:"venue"`
	MaxSeats        int     `json:"max_seats"`
	SeatsPerTable   int     `json:"seats_per_table"`
	WelcomeImage    *string `json:"welcome_image"`
	GuestPhotosLink *string `json:"guest_photos_link"`
}

func (r settingsRequest) toInput() (application.SettingsInput, error) {
	input := application.SettingsInput{
		CoupleNames:     r.CoupleNames,
		Venue:           r.Venue,
		MaxSeats:        r.MaxSeats,
		SeatsPerTable:   r.SeatsPerTable,
		WelcomeImage:    r.WelcomeImage,
		GuestPhotosLink: r.GuestPhotosLink,
	}
	if value := strings.TrimSpace(r.EventDate); value != "" {
		eventDate, err := parseEventDate(value)
		if err != nil {
			return input, &application.ValidationError{FieldErrors: map[string]string{"event_date": "event date must be RFC 3339 or YYYY-MM-DDTHH:MM"}}
		}
		input.EventDate = eventDate
	}
	return input, nil
}

// parseEventDate accepts RFC 3339 and the datetime-local form value.
func parseEventDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04", value, time.UTC)
}

type settingsResponse struct {
	Settings settingsDTO `json:"settings"`
}

type settingsDTO struct {
	ID              string  `json:"id,omitempty"`
	CoupleNames     string  `json:"couple_names"`
	EventDate       *string `json:"event_date"`
	Venue           string  `json:"venue"`
	MaxSeats        int     `json:"max_seats"`
	SeatsPerTable   int     `json:"seats_per_table"`
	WelcomeImage    *string `json:"welcome_image"`
	GuestPhotosLink *string `json:"guest_photos_link"`
}

func toSettingsDTO(s application.Settings) settingsDTO {
	dto := settingsDTO{
		ID:              s.ID,
		CoupleNames:     s.CoupleNames,
		Venue:           s.Venue,
		MaxSeats:        s.MaxSeats,
		SeatsPerTable:   s.SeatsPerTable,
		WelcomeImage:    s.WelcomeImage,
		GuestPhotosLink: s.GuestPhotosLink,
	}
	if !s.EventDate.IsZero() {
		formatted := s.EventDate.UTC().Format(time.RFC3339)
		dto.EventDate = &formatted
	}
	return dto
}

type dashboardResponse struct {
	TotalGuests    int            `json:"total_guests"`
	Arrived        int            `json:"arrived"`
	Confirmed      int            `json:"confirmed"`
	MealsServed    int            `json:"meals_served"`
	DrinksServed   int            `json:"drinks_served"`
	MaxSeats       int            `json:"max_seats"`
	AvailableSeats int            `json:"available_seats"`
	PendingCodes   int            `json:"pending_codes"`
	Categories     map[string]int `json:"categories"`
}

type countdownResponse struct {
	EventDate string `json:"event_date"`
	Days      int    `json:"days"`
	Hours     int    `json:"hours"`
	Minutes   int    `json:"minutes"`
	Seconds   int    `json:"seconds"`
	Started   bool   `json:"started"`
}
