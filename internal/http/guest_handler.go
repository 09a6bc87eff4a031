package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/wedding-portal/internal/application"
	"github.com/example/wedding-portal/internal/cards"
)

const maxImportBytes = 1 << 20

type guestService interface {
	ListGuests(ctx context.Context, principal application.Principal, search string) ([]application.GuestDetails, error)
	Guest(ctx context.Context, principal application.Principal, code string) (application.GuestDetails, error)
	AddGuest(ctx context.Context, params application.AddGuestParams) (application.Guest, error)
	UpdateGuest(ctx context.Context, params application.UpdateGuestParams) (application.Guest, error)
	ImportCSV(ctx context.Context, principal application.Principal, r io.Reader) ([]application.Guest, error)
	GenerateAccessCodes(ctx context.Context, principal application.Principal, n int) ([]string, error)
	PendingCodes(ctx context.Context, principal application.Principal) ([]string, error)
	ClaimAccessCode(ctx context.Context, params application.ClaimAccessCodeParams) (application.Guest, error)
	Profile(ctx context.Context, principal application.Principal) (application.GuestProfile, error)
	ConfirmArrival(ctx context.Context, principal application.Principal) (application.Guest, error)
	SeatChart(ctx context.Context, principal application.Principal) (application.SeatChart, error)
}

type eventSettings interface {
	GetSettings(ctx context.Context, principal application.Principal) (application.Settings, error)
}

type cardRenderer interface {
	QRCode(code string, size int) ([]byte, error)
	Render(w io.Writer, event cards.Event, guests []cards.Card) error
}

// GuestHandler serves guest administration and the guest's own views.
type GuestHandler struct {
	service   guestService
	settings  eventSettings
	cards     cardRenderer
	responder responder
	logger    *slog.Logger
}

// NewGuestHandler constructs a GuestHandler.
func NewGuestHandler(service guestService, settings eventSettings, renderer cardRenderer, logger *slog.Logger) *GuestHandler {
	return &GuestHandler{service: service, settings: settings, cards: renderer, responder: newResponder(logger), logger: logger}
}

func (h *GuestHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "GuestHandler", operation, attrs...)
}

// List handles GET /guests.
func (h *GuestHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	guests, err := h.service.ListGuests(r.Context(), principal, r.URL.Query().Get("search"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]guestDTO, 0, len(guests))
	for _, g := range guests {
		dtos = append(dtos, toGuestDTO(g.Guest, g.TableNumber))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listGuestsResponse{Guests: dtos})
}

// Create handles POST /guests.
func (h *GuestHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode guest request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")
	guest, err := h.service.AddGuest(r.Context(), application.AddGuestParams{Principal: principal, Input: req.toInput()})
	if err != nil {
		logger.ErrorContext(r.Context(), "guest creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("target_code", guest.AccessCode).InfoContext(r.Context(), "guest created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, guestResponse{Guest: toGuestDTO(guest, nil)})
}

// Update handles PUT /guests/{code}.
func (h *GuestHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathValue)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	var req guestPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "target_code", code, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode guest update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "target_code", code)
	guest, err := h.service.UpdateGuest(r.Context(), application.UpdateGuestParams{
		Principal:  principal,
		AccessCode: code,
		Patch:      req.toPatch(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "guest update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "guest updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, guestResponse{Guest: toGuestDTO(guest, nil)})
}

// QRCode handles GET /guests/{code}/qr.
func (h *GuestHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	guest, err := h.service.Guest(r.Context(), principal, r.PathValue("code"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	size := 256
	if raw := r.URL.Query().Get("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 64 && n <= 1024 {
			size = n
		}
	}
	png, err := h.cards.QRCode(guest.AccessCode, size)
	if err != nil {
		h.log(r.Context(), "QRCode", "target_code", guest.AccessCode).ErrorContext(r.Context(), "qr encoding failed", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}
	h.responder.writeBytes(r.Context(), w, "image/png", "", png)
}

// Cards handles GET /guests/cards.pdf.
func (h *GuestHandler) Cards(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	guests, err := h.service.ListGuests(r.Context(), principal, r.URL.Query().Get("search"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	settings, err := h.settings.GetSettings(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	sheet := make([]cards.Card, 0, len(guests))
	for _, g := range guests {
		sheet = append(sheet, cards.Card{Name: g.Name, AccessCode: g.AccessCode, SeatNumber: g.SeatNumber, TableNumber: g.TableNumber})
	}

	logger := h.log(r.Context(), "Cards", "card_count", len(sheet))
	var buf bytes.Buffer
	err = h.cards.Render(&buf, cards.Event{CoupleNames: settings.CoupleNames, EventDate: settings.EventDate, Venue: settings.Venue}, sheet)
	if errors.Is(err, cards.ErrNoCards) {
		h.responder.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: "There are no guests to print cards for."})
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "card rendering failed", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}

	logger.InfoContext(r.Context(), "access cards rendered")
	h.responder.writeBytes(r.Context(), w, "application/pdf", "access-cards.pdf", buf.Bytes())
}

// Import handles POST /guests/import with a CSV body or a multipart "file" field.
func (h *GuestHandler) Import(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var body io.Reader = r.Body
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			h.log(r.Context(), "Import", "error_kind", "bad_request").WarnContext(r.Context(), "missing csv upload", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		defer file.Close()
		body = file
	}

	logger := h.log(r.Context(), "Import")
	guests, err := h.service.ImportCSV(r.Context(), principal, body)
	if err != nil {
		logger.ErrorContext(r.Context(), "guest import failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]guestDTO, 0, len(guests))
	for _, g := range guests {
		dtos = append(dtos, toGuestDTO(g, nil))
	}
	logger.With("imported", len(guests)).InfoContext(r.Context(), "guests imported")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, listGuestsResponse{Guests: dtos})
}

// GenerateCodes handles POST /access-codes. Clients sending Accept: text/csv
// receive a CSV download instead of JSON.
func (h *GuestHandler) GenerateCodes(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req generateCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "GenerateCodes", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode access code request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "GenerateCodes", "requested", req.Count)
	codes, err := h.service.GenerateAccessCodes(r.Context(), principal, req.Count)
	if err != nil {
		logger.ErrorContext(r.Context(), "access code generation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), "access codes generated")

	if strings.Contains(r.Header.Get("Accept"), "text/csv") {
		var buf bytes.Buffer
		if err := application.WriteAccessCodesCSV(&buf, codes); err != nil {
			logger.ErrorContext(r.Context(), "csv encoding failed", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
			return
		}
		h.responder.writeBytes(r.Context(), w, "text/csv; charset=utf-8", "access-codes-"+time.Now().UTC().Format("20060102")+".csv", buf.Bytes())
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, accessCodesResponse{Codes: codes})
}

// PendingCodes handles GET /access-codes.
func (h *GuestHandler) PendingCodes(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	codes, err := h.service.PendingCodes(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if codes == nil {
		codes = []string{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, accessCodesResponse{Codes: codes})
}

// ClaimCode handles POST /access-codes/{code}/claim.
func (h *GuestHandler) ClaimCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	principal, _ := PrincipalFromContext(r.Context())

	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "ClaimCode", "target_code", code, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode claim request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "ClaimCode", "target_code", code)
	guest, err := h.service.ClaimAccessCode(r.Context(), application.ClaimAccessCodeParams{
		Principal:  principal,
		AccessCode: code,
		Input:      req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "access code claim failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "access code claimed")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, guestResponse{Guest: toGuestDTO(guest, nil)})
}

// Me handles GET /me.
func (h *GuestHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	profile, err := h.service.Profile(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, profileResponse{
		Guest:    toGuestDTO(profile.Guest, profile.TableNumber),
		Settings: toSettingsDTO(profile.Settings),
		Seats:    toSeatChartDTO(profile.Seats),
	})
}

// ConfirmArrival handles POST /me/arrival.
func (h *GuestHandler) ConfirmArrival(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ConfirmArrival")
	guest, err := h.service.ConfirmArrival(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "arrival confirmation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), "arrival confirmed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, guestResponse{Guest: toGuestDTO(guest, nil)})
}

// Seats handles GET /seats.
func (h *GuestHandler) Seats(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	chart, err := h.service.SeatChart(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSeatChartDTO(chart))
}

type guestRequest struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	SeatNumber *int   `json:"seat_number"`
}

func (r guestRequest) toInput() application.GuestInput {
	return application.GuestInput{
		Name:       r.Name,
		Category:   application.GuestCategory(strings.ToLower(strings.TrimSpace(r.Category))),
		SeatNumber: r.SeatNumber,
	}
}

// optional distinguishes an absent JSON key from an explicit null.
type optional[T any] struct {
	set   bool
	value *T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.value = &v
	return nil
}

type guestPatchRequest struct {
	Name          *string          `json:"name"`
	SeatNumber    optional[int]    `json:"seat_number"`
	Arrived       *bool            `json:"arrived"`
	MealServed    *bool            `json:"meal_served"`
	DrinkServed   *bool            `json:"drink_served"`
	SelectedFood  optional[string] `json:"selected_food"`
	SelectedDrink optional[string] `json:"selected_drink"`
	Category      *string          `json:"category"`
}

func (r guestPatchRequest) toPatch() application.GuestPatch {
	patch := application.GuestPatch{
		Name:        r.Name,
		Arrived:     r.Arrived,
		MealServed:  r.MealServed,
		DrinkServed: r.DrinkServed,
	}
	if r.SeatNumber.set {
		if r.SeatNumber.value == nil {
			patch.ClearSeat = true
		} else {
			patch.SeatNumber = r.SeatNumber.value
		}
	}
	patch.SelectedFood = clearable(r.SelectedFood)
	patch.SelectedDrink = clearable(r.SelectedDrink)
	if r.Category != nil {
		category := application.GuestCategory(strings.ToLower(strings.TrimSpace(*r.Category)))
		patch.Category = &category
	}
	return patch
}

// clearable maps an explicit null to the empty string that clears a choice.
func clearable(o optional[string]) *string {
	if !o.set {
		return nil
	}
	if o.value == nil {
		empty := ""
		return &empty
	}
	return o.value
}

type generateCodesRequest struct {
	Count int `json:"count"`
}

type accessCodesResponse struct {
	Codes []string `json:"codes"`
}

type guestResponse struct {
	Guest guestDTO `json:"guest"`
}

type listGuestsResponse struct {
	Guests []guestDTO `json:"guests"`
}

type guestDTO struct {
	ID            string  `json:"id"`
	AccessCode    string  `json:"access_code"`
	Name          string  `json:"name"`
	SeatNumber    *int    `json:"seat_number"`
	TableNumber   *int    `json:"table_number,omitempty"`
	Arrived       bool    `json:"arrived"`
	MealServed    bool    `json:"meal_served"`
	DrinkServed   bool    `json:"drink_served"`
	SelectedFood  *string `json:"selected_food"`
	SelectedDrink *string `json:"selected_drink"`
	Category      string  `json:"category"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func toGuestDTO(g application.Guest, table *int) guestDTO {
	return guestDTO{
		ID:            g.ID,
		AccessCode:    g.AccessCode,
		Name:          g.Name,
		SeatNumber:    g.SeatNumber,
		TableNumber:   table,
		Arrived:       g.Arrived,
		MealServed:    g.MealServed,
		DrinkServed:   g.DrinkServed,
		SelectedFood:  g.SelectedFood,
		SelectedDrink: g.SelectedDrink,
		Category:      string(g.Category),
		CreatedAt:     g.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:     g.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type profileResponse struct {
	Guest    guestDTO     `json:"guest"`
	Settings settingsDTO  `json:"settings"`
	Seats    seatChartDTO `json:"seats"`
}

type seatChartDTO struct {
	MaxSeats      int       `json:"max_seats"`
	SeatsPerTable int       `json:"seats_per_table"`
	Seats         []seatDTO `json:"seats"`
}

type seatDTO struct {
	Number    int      `json:"number"`
	Table     int      `json:"table"`
	State     string   `json:"state"`
	Occupants []string `json:"occupants,omitempty"`
}

func toSeatChartDTO(chart application.SeatChart) seatChartDTO {
	seats := make([]seatDTO, len(chart.Seats))
	for i, s := range chart.Seats {
		seats[i] = seatDTO{Number: s.Number, Table: s.Table, State: string(s.State), Occupants: s.Occupants}
	}
	return seatChartDTO{MaxSeats: chart.MaxSeats, SeatsPerTable: chart.SeatsPerTable, Seats: seats}
}
