package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/wedding-portal/internal/application"
)

type contentService interface {
	ListGallery(ctx context.Context, principal application.Principal) ([]application.GalleryItem, error)
	AddGalleryItem(ctx context.Context, principal application.Principal, input application.GalleryInput) (application.GalleryItem, error)
	RemoveGalleryItem(ctx context.Context, principal application.Principal, id string) error
	ListMenu(ctx context.Context, principal application.Principal, kind application.MenuKind) ([]application.MenuItem, error)
	AddMenuItem(ctx context.Context, principal application.Principal, kind application.MenuKind, input application.MenuItemInput) (application.MenuItem, error)
	RemoveMenuItem(ctx context.Context, principal application.Principal, kind application.MenuKind, id string) error
	ListAsoebi(ctx context.Context, principal application.Principal) ([]application.AsoebiItem, error)
	AddAsoebiItem(ctx context.Context, principal application.Principal, input application.AsoebiInput) (application.AsoebiItem, error)
	RemoveAsoebiItem(ctx context.Context, principal application.Principal, id string) error
	AsoebiOrderLink(ctx context.Context, principal application.Principal, id string) (string, error)
	ListRegistry(ctx context.Context, principal application.Principal) ([]application.RegistryItem, error)
	AddRegistryItem(ctx context.Context, principal application.Principal, input application.RegistryInput) (application.RegistryItem, error)
	RemoveRegistryItem(ctx context.Context, principal application.Principal, id string) error
	ListWeddingParty(ctx context.Context, principal application.Principal) (application.WeddingParty, error)
	AddWeddingPartyMember(ctx context.Context, principal application.Principal, input application.WeddingPartyInput) (application.WeddingPartyMember, error)
	RemoveWeddingPartyMember(ctx context.Context, principal application.Principal, id string) error
	RemoveAt(ctx context.Context, principal application.Principal, c application.Collection, index int) (string, error)
	GetPaymentDetails(ctx context.Context, principal application.Principal) (application.PaymentDetails, error)
	UpdatePaymentDetails(ctx context.Context, principal application.Principal, input application.PaymentDetailsInput) (application.PaymentDetails, error)
	Reload(ctx context.Context, principal application.Principal) error
}

// ContentHandler serves the gallery, menus, asoebi, registry, wedding party
// and payment details.
type ContentHandler struct {
	service   contentService
	responder responder
	logger    *slog.Logger
}

// NewContentHandler constructs a ContentHandler.
func NewContentHandler(service contentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{service: service, responder: newResponder(logger), logger: logger}
}

func (h *ContentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ContentHandler", operation, attrs...)
}

// decode reads a JSON body into dst, answering 400 on failure.
func (h *ContentHandler) decode(w http.ResponseWriter, r *http.Request, operation string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode request body", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return false
	}
	return true
}

func (h *ContentHandler) remove(w http.ResponseWriter, r *http.Request, operation string, fn func(ctx context.Context, principal application.Principal, id string) error) {
	id := r.PathValue("id")
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathValue)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	if err := fn(r.Context(), principal, id); err != nil {
		h.log(r.Context(), operation, "item_id", id).ErrorContext(r.Context(), "content removal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListGallery handles GET /gallery.
func (h *ContentHandler) ListGallery(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	items, err := h.service.ListGallery(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]galleryItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toGalleryItemDTO(item))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"items": dtos})
}

// AddGalleryItem handles POST /gallery.
func (h *ContentHandler) AddGalleryItem(w http.ResponseWriter, r *http.Request) {
	var req galleryItemRequest
	if !h.decode(w, r, "AddGalleryItem", &req) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	item, err := h.service.AddGalleryItem(r.Context(), principal, application.GalleryInput{Title: req.Title, ImageURL: req.ImageURL, Type: req.Type})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{"item": toGalleryItemDTO(item)})
}

// RemoveGalleryItem handles DELETE /gallery/{id}.
func (h *ContentHandler) RemoveGalleryItem(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "RemoveGalleryItem", h.service.RemoveGalleryItem)
}

// ListMenu handles GET /menu/food and GET /menu/drinks.
func (h *ContentHandler) ListMenu(kind application.MenuKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := PrincipalFromContext(r.Context())
		items, err := h.service.ListMenu(r.Context(), principal, kind)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		dtos := make([]menuItemDTO, 0, len(items))
		for _, item := range items {
			dtos = append(dtos, toMenuItemDTO(item))
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"items": dtos})
	}
}

// AddMenuItem handles POST /menu/food and POST /menu/drinks.
func (h *ContentHandler) AddMenuItem(kind application.MenuKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req menuItemRequest
		if !h.decode(w, r, "AddMenuItem", &req) {
			return
		}
		principal, _ := PrincipalFromContext(r.Context())
		item, err := h.service.AddMenuItem(r.Context(), principal, kind, application.MenuItemInput{
			Name:        req.Name,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			Category:    req.Category,
		})
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{"item": toMenuItemDTO(item)})
	}
}

// RemoveMenuItem handles DELETE /menu/food/{id} and DELETE /menu/drinks/{id}.
func (h *ContentHandler) RemoveMenuItem(kind application.MenuKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.remove(w, r, "RemoveMenuItem", func(ctx context.Context, principal application.Principal, id string) error {
			return h.service.RemoveMenuItem(ctx, principal, kind, id)
		})
	}
}

// ListAsoebi handles GET /asoebi.
func (h *ContentHandler) ListAsoebi(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	items, err := h.service.ListAsoebi(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]asoebiItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toAsoebiItemDTO(item))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"items": dtos})
}

// AddAsoebiItem handles POST /asoebi.
func (h *ContentHandler) AddAsoebiItem(w http.ResponseWriter, r *http.Request) {
	var req asoebiItemRequest
	if !h.decode(w, r, "AddAsoebiItem", &req) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	item, err := h.service.AddAsoebiItem(r.Context(), principal, application.AsoebiInput{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Gender:      req.Gender,
		Currency:    req.Currency,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{"item": toAsoebiItemDTO(item)})
}

// RemoveAsoebiItem handles DELETE /asoebi/{id}.
func (h *ContentHandler) RemoveAsoebiItem(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "RemoveAsoebiItem", h.service.RemoveAsoebiItem)
}

// AsoebiOrderLink handles GET /asoebi/{id}/order-link.
func (h *ContentHandler) AsoebiOrderLink(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	link, err := h.service.AsoebiOrderLink(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"link": link})
}

// ListRegistry handles GET /registry.
func (h *ContentHandler) ListRegistry(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	items, err := h.service.ListRegistry(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]registryItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toRegistryItemDTO(item))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"items": dtos})
}

// AddRegistryItem handles POST /registry.
func (h *ContentHandler) AddRegistryItem(w http.ResponseWriter, r *http.Request) {
	var req registryItemRequest
	if !h.decode(w, r, "AddRegistryItem", &req) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	item, err := h.service.AddRegistryItem(r.Context(), principal, application.RegistryInput{
		Item:        req.Item,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Link:        req.Link,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{"item": toRegistryItemDTO(item)})
}

// RemoveRegistryItem handles DELETE /registry/{id}.
func (h *ContentHandler) RemoveRegistryItem(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "RemoveRegistryItem", h.service.RemoveRegistryItem)
}

// ListWeddingParty handles GET /wedding-party.
func (h *ContentHandler) ListWeddingParty(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	party, err := h.service.ListWeddingParty(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	resp := weddingPartyResponse{
		Bride: make([]weddingPartyMemberDTO, 0, len(party.Bride)),
		Groom: make([]weddingPartyMemberDTO, 0, len(party.Groom)),
	}
	for _, m := range party.Bride {
		resp.Bride = append(resp.Bride, toWeddingPartyMemberDTO(m))
	}
	for _, m := range party.Groom {
		resp.Groom = append(resp.Groom, toWeddingPartyMemberDTO(m))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// AddWeddingPartyMember handles POST /wedding-party.
func (h *ContentHandler) AddWeddingPartyMember(w http.ResponseWriter, r *http.Request) {
	var req weddingPartyMemberRequest
	if !h.decode(w, r, "AddWeddingPartyMember", &req) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	member, err := h.service.AddWeddingPartyMember(r.Context(), principal, application.WeddingPartyInput{
		Name:     req.Name,
		Role:     req.Role,
		ImageURL: req.ImageURL,
		Bio:      req.Bio,
		Side:     req.Side,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{"member": toWeddingPartyMemberDTO(member)})
}

// RemoveWeddingPartyMember handles DELETE /wedding-party/{id}.
func (h *ContentHandler) RemoveWeddingPartyMember(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "RemoveWeddingPartyMember", h.service.RemoveWeddingPartyMember)
}

// RemoveAt handles DELETE /collections/{collection}/{index}, removing by
// display position.
func (h *ContentHandler) RemoveAt(w http.ResponseWriter, r *http.Request) {
	collection, ok := application.ParseCollection(r.PathValue("collection"))
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNotFound)
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathValue)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "RemoveAt", "collection", collection, "index", index)
	id, err := h.service.RemoveAt(r.Context(), principal, collection, index)
	if err != nil {
		logger.ErrorContext(r.Context(), "positional removal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"removed_id": id})
}

// GetPaymentDetails handles GET /payment-details.
func (h *ContentHandler) GetPaymentDetails(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	details, err := h.service.GetPaymentDetails(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPaymentDetailsDTO(details))
}

// UpdatePaymentDetails handles PUT /payment-details.
func (h *ContentHandler) UpdatePaymentDetails(w http.ResponseWriter, r *http.Request) {
	var req paymentDetailsDTO
	if !h.decode(w, r, "UpdatePaymentDetails", &req) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	details, err := h.service.UpdatePaymentDetails(r.Context(), principal, application.PaymentDetailsInput{
		AccountName:    req.AccountName,
		AccountNumber:  req.AccountNumber,
		BankName:       req.BankName,
		WhatsAppNumber: req.WhatsAppNumber,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPaymentDetailsDTO(details))
}

// Reload handles POST /admin/reload.
func (h *ContentHandler) Reload(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Reload")
	if err := h.service.Reload(r.Context(), principal); err != nil {
		logger.ErrorContext(r.Context(), "reload failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), "state reloaded")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func formatCreatedAt(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

type galleryItemRequest struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	Type     string `json:"type"`
}

type galleryItemDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

func toGalleryItemDTO(i application.GalleryItem) galleryItemDTO {
	return galleryItemDTO{ID: i.ID, Title: i.Title, ImageURL: i.ImageURL, Type: i.Type, CreatedAt: formatCreatedAt(i.CreatedAt)}
}

type menuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
}

type menuItemDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	CreatedAt   string `json:"created_at"`
}

func toMenuItemDTO(i application.MenuItem) menuItemDTO {
	return menuItemDTO{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		ImageURL:    i.ImageURL,
		Category:    i.Category,
		CreatedAt:   formatCreatedAt(i.CreatedAt),
	}
}

type asoebiItemRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	Gender      string  `json:"gender"`
	Currency    string  `json:"currency"`
}

type asoebiItemDTO struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	ImageURL       string  `json:"image_url"`
	Price          float64 `json:"price"`
	FormattedPrice string  `json:"formatted_price"`
	Gender         string  `json:"gender"`
	Currency       string  `json:"currency"`
	CreatedAt      string  `json:"created_at"`
}

func toAsoebiItemDTO(i application.AsoebiItem) asoebiItemDTO {
	return asoebiItemDTO{
		ID:             i.ID,
		Title:          i.Title,
		Description:    i.Description,
		ImageURL:       i.ImageURL,
		Price:          i.Price,
		FormattedPrice: application.FormatPrice(i.Price, i.Currency),
		Gender:         i.Gender,
		Currency:       i.Currency,
		CreatedAt:      formatCreatedAt(i.CreatedAt),
	}
}

type registryItemRequest struct {
	Item        string  `json:"item"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	Link        string  `json:"link"`
}

type registryItemDTO struct {
	ID          string  `json:"id"`
	Item        string  `json:"item"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	Link        string  `json:"link,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toRegistryItemDTO(i application.RegistryItem) registryItemDTO {
	return registryItemDTO{
		ID:          i.ID,
		Item:        i.Item,
		Description: i.Description,
		ImageURL:    i.ImageURL,
		Price:       i.Price,
		Link:        i.Link,
		CreatedAt:   formatCreatedAt(i.CreatedAt),
	}
}

type weddingPartyMemberRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	ImageURL string `json:"image_url"`
	Bio      string `json:"bio"`
	Side     string `json:"side"`
}

type weddingPartyMemberDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	ImageURL  string `json:"image_url"`
	Bio       string `json:"bio"`
	Side      string `json:"side"`
	CreatedAt string `json:"created_at"`
}

func toWeddingPartyMemberDTO(m application.WeddingPartyMember) weddingPartyMemberDTO {
	return weddingPartyMemberDTO{
		ID:        m.ID,
		Name:      m.Name,
		Role:      m.Role,
		ImageURL:  m.ImageURL,
		Bio:       m.Bio,
		Side:      m.Side,
		CreatedAt: formatCreatedAt(m.CreatedAt),
	}
}

type weddingPartyResponse struct {
	Bride []weddingPartyMemberDTO `json:"bride"`
	Groom []weddingPartyMemberDTO `json:"groom"`
}

type paymentDetailsDTO struct {
	AccountName    string `json:"account_name"`
	AccountNumber  string `json:"account_number"`
	BankName       string `json:"bank_name"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

func toPaymentDetailsDTO(d application.PaymentDetails) paymentDetailsDTO {
	return paymentDetailsDTO{
		AccountName:    d.AccountName,
		AccountNumber:  d.AccountNumber,
		BankName:       d.BankName,
		WhatsAppNumber: d.WhatsAppNumber,
	}
}
