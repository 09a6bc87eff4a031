package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// GalleryInput captures a new gallery item.
type GalleryInput struct {
	Title    string
	ImageURL string
	Type     string
}

// MenuItemInput captures a new food or drink item.
type MenuItemInput struct {
	Name        string
	Description string
	ImageURL    string
	Category    string
}

// AsoebiInput captures a new asoebi item.
type AsoebiInput struct {
	Title       string
	Description string
	ImageURL    string
	Price       float64
	Gender      string
	Currency    string
}

// RegistryInput captures a new registry item.
type RegistryInput struct {
	Item        string
	Description string
	ImageURL    string
	Price       float64
	Link        string
}

// WeddingPartyInput captures a new wedding party member.
type WeddingPartyInput struct {
	Name     string
	Role     string
	ImageURL string
	Bio      string
	Side     string
}

// PaymentDetailsInput captures the editable payment details.
type PaymentDetailsInput struct {
	AccountName    string
	AccountNumber  string
	BankName       string
	WhatsAppNumber string
}

// ContentService manages the guest-facing content lists and payment details.
// Any identity may read; only administrators may change content.
type ContentService struct {
	store  *Store
	logger *slog.Logger
}

// NewContentService constructs a content service.
func NewContentService(store *Store) *ContentService {
	return NewContentServiceWithLogger(store, nil)
}

// NewContentServiceWithLogger constructs a content service with a specified logger.
func NewContentServiceWithLogger(store *Store, logger *slog.Logger) *ContentService {
	return &ContentService{store: store, logger: logger}
}

func (s *ContentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ContentService", operation, attrs...)
}

func (s *ContentService) ready() error {
	if s == nil || s.store == nil {
		return fmt.Errorf("ContentService is not configured")
	}
	return nil
}

// mutate runs an administrator-only change and logs its outcome once.
func (s *ContentService) mutate(ctx context.Context, principal Principal, operation string, attrs []any, fn func() ([]any, error)) error {
	if err := s.ready(); err != nil {
		return err
	}
	logger := s.loggerWith(ctx, operation, append(principalAttrs(principal), attrs...)...)
	if !principal.IsAdmin {
		logger.WarnContext(ctx, "content change rejected", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}
	result, err := fn()
	if err != nil {
		logger.ErrorContext(ctx, "content change failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.With(result...).InfoContext(ctx, "content changed")
	return nil
}

// ListGallery returns gallery items in creation order.
func (s *ContentService) ListGallery(ctx context.Context, principal Principal) ([]GalleryItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.GalleryItems(), nil
}

// AddGalleryItem validates and stores a gallery item.
func (s *ContentService) AddGalleryItem(ctx context.Context, principal Principal, input GalleryInput) (item GalleryItem, err error) {
	err = s.mutate(ctx, principal, "AddGalleryItem", nil, func() ([]any, error) {
		vErr := &ValidationError{}
		vErr.merge(validateURL("image_url", input.ImageURL))
		kind := strings.ToLower(strings.TrimSpace(input.Type))
		if kind == "" {
			kind = "image"
		}
		if kind != "image" && kind != "video" {
			vErr.add("type", "type must be image or video")
		}
		if vErr.HasErrors() {
			return nil, vErr
		}
		var addErr error
		item, addErr = s.store.AddGalleryItem(ctx, GalleryItem{
			Title:    strings.TrimSpace(input.Title),
			ImageURL: strings.TrimSpace(input.ImageURL),
			Type:     kind,
		})
		return []any{"item_id", item.ID}, addErr
	})
	return
}

// RemoveGalleryItem deletes a gallery item by id.
func (s *ContentService) RemoveGalleryItem(ctx context.Context, principal Principal, id string) error {
	return s.mutate(ctx, principal, "RemoveGalleryItem", []any{"item_id", id}, func() ([]any, error) {
		return nil, s.store.RemoveGalleryItem(ctx, id)
	})
}

// ListMenu returns the food or drink menu in creation order.
func (s *ContentService) ListMenu(ctx context.Context, principal Principal, kind MenuKind) ([]MenuItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, ok := menuCategories[kind]; !ok {
		return nil, ErrNotFound
	}
	return s.store.MenuItems(kind), nil
}

// AddMenuItem validates and stores a food or drink item.
func (s *ContentService) AddMenuItem(ctx context.Context, principal Principal, kind MenuKind, input MenuItemInput) (item MenuItem, err error) {
	err = s.mutate(ctx, principal, "AddMenuItem", []any{"menu", kind}, func() ([]any, error) {
		if _, ok := menuCategories[kind]; !ok {
			return nil, ErrNotFound
		}
		vErr := &ValidationError{}
		name := strings.TrimSpace(input.Name)
		if name == "" {
			vErr.add("name", "name is required")
		}
		category := strings.ToLower(strings.TrimSpace(input.Category))
		if !validMenuCategory(kind, category) {
			vErr.add("category", fmt.Sprintf("category must be one of %s", strings.Join(menuCategories[kind], ", ")))
		}
		vErr.merge(validateOptionalURL("image_url", &input.ImageURL))
		if vErr.HasErrors() {
			return nil, vErr
		}
		var addErr error
		item, addErr = s.store.AddMenuItem(ctx, kind, MenuItem{
			Name:        name,
			Description: strings.TrimSpace(input.Description),
			ImageURL:    strings.TrimSpace(input.ImageURL),
			Category:    category,
		})
		return []any{"item_id", item.ID}, addErr
	})
	return
}

// RemoveMenuItem deletes a food or drink item by id.
func (s *ContentService) RemoveMenuItem(ctx context.Context, principal Principal, kind MenuKind, id string) error {
	return s.mutate(ctx, principal, "RemoveMenuItem", []any{"menu", kind, "item_id", id}, func() ([]any, error) {
		return nil, s.store.RemoveMenuItem(ctx, kind, id)
	})
}

// ListAsoebi returns asoebi items in creation order.
func (s *ContentService) ListAsoebi(ctx context.Context, principal Principal) ([]AsoebiItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.AsoebiItems(), nil
}

// AddAsoebiItem validates and stores an asoebi item.
func (s *ContentService) AddAsoebiItem(ctx context.Context, principal Principal, input AsoebiInput) (item AsoebiItem, err error) {
	err = s.mutate(ctx, principal, "AddAsoebiItem", nil, func() ([]any, error) {
		vErr := &ValidationError{}
		title := strings.TrimSpace(input.Title)
		if title == "" {
			vErr.add("title", "title is required")
		}
		if input.Price <= 0 {
			vErr.add("price", "price must be positive")
		}
		gender := strings.ToLower(strings.TrimSpace(input.Gender))
		if gender != "male" && gender != "female" && gender != "unisex" {
			vErr.add("gender", "gender must be male, female or unisex")
		}
		code, currErr := NormalizeCurrency(input.Currency)
		if currErr != nil {
			vErr.add("currency", "currency must be an ISO 4217 code")
		}
		vErr.merge(validateOptionalURL("image_url", &input.ImageURL))
		if vErr.HasErrors() {
			return nil, vErr
		}
		var addErr error
		item, addErr = s.store.AddAsoebiItem(ctx, AsoebiItem{
			Title:       title,
			Description: strings.TrimSpace(input.Description),
			ImageURL:    strings.TrimSpace(input.ImageURL),
			Price:       input.Price,
			Gender:      gender,
			Currency:    code,
		})
		return []any{"item_id", item.ID}, addErr
	})
	return
}

// RemoveAsoebiItem deletes an asoebi item by id.
func (s *ContentService) RemoveAsoebiItem(ctx context.Context, principal Principal, id string) error {
	return s.mutate(ctx, principal, "RemoveAsoebiItem", []any{"item_id", id}, func() ([]any, error) {
		return nil, s.store.RemoveAsoebiItem(ctx, id)
	})
}

// AsoebiOrderLink builds the WhatsApp link a guest follows to order an item.
func (s *ContentService) AsoebiOrderLink(ctx context.Context, principal Principal, id string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	item, ok := s.store.AsoebiItem(id)
	if !ok {
		return "", ErrNotFound
	}
	details, _ := s.store.PaymentDetails()
	return AsoebiOrderLink(item, details.WhatsAppNumber)
}

// ListRegistry returns registry items in creation order.
func (s *ContentService) ListRegistry(ctx context.Context, principal Principal) ([]RegistryItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.RegistryItems(), nil
}

// AddRegistryItem validates and stores a registry item.
func (s *ContentService) AddRegistryItem(ctx context.Context, principal Principal, input RegistryInput) (item RegistryItem, err error) {
	err = s.mutate(ctx, principal, "AddRegistryItem", nil, func() ([]any, error) {
		vErr := &ValidationError{}
		name := strings.TrimSpace(input.Item)
		if name == "" {
			vErr.add("item", "item is required")
		}
		if input.Price < 0 {
			vErr.add("price", "price cannot be negative")
		}
		vErr.merge(validateOptionalURL("link", &input.Link))
		vErr.merge(validateOptionalURL("image_url", &input.ImageURL))
		if vErr.HasErrors() {
			return nil, vErr
		}
		var addErr error
		item, addErr = s.store.AddRegistryItem(ctx, RegistryItem{
			Item:        name,
			Description: strings.TrimSpace(input.Description),
			ImageURL:    strings.TrimSpace(input.ImageURL),
			Price:       input.Price,
			Link:        strings.TrimSpace(input.Link),
		})
		return []any{"item_id", item.ID}, addErr
	})
	return
}

// RemoveRegistryItem deletes a registry item by id.
func (s *ContentService) RemoveRegistryItem(ctx context.Context, principal Principal, id string) error {
	return s.mutate(ctx, principal, "RemoveRegistryItem", []any{"item_id", id}, func() ([]any, error) {
		return nil, s.store.RemoveRegistryItem(ctx, id)
	})
}

// ListWeddingParty returns members grouped by side.
func (s *ContentService) ListWeddingParty(ctx context.Context, principal Principal) (WeddingParty, error) {
	if err := s.ready(); err != nil {
		return WeddingParty{}, err
	}
	party := WeddingParty{Bride: []WeddingPartyMember{}, Groom: []WeddingPartyMember{}}
	for _, member := range s.store.WeddingPartyMembers() {
		if member.Side == "groom" {
			party.Groom = append(party.Groom, member)
		} else {
			party.Bride = append(party.Bride, member)
		}
	}
	return party, nil
}

// AddWeddingPartyMember validates and stores a wedding party member.
func (s *ContentService) AddWeddingPartyMember(ctx context.Context, principal Principal, input WeddingPartyInput) (member WeddingPartyMember, err error) {
	err = s.mutate(ctx, principal, "AddWeddingPartyMember", nil, func() ([]any, error) {
		vErr := &ValidationError{}
		name := strings.TrimSpace(input.Name)
		if name == "" {
			vErr.add("name", "name is required")
		}
		side := strings.ToLower(strings.TrimSpace(input.Side))
		if side != "bride" && side != "groom" {
			vErr.add("side", "side must be bride or groom")
		}
		vErr.merge(validateOptionalURL("image_url", &input.ImageURL))
		if vErr.HasErrors() {
			return nil, vErr
		}
		var addErr error
		member, addErr = s.store.AddWeddingPartyMember(ctx, WeddingPartyMember{
			Name:     name,
			Role:     strings.TrimSpace(input.Role),
			ImageURL: strings.TrimSpace(input.ImageURL),
			Bio:      strings.TrimSpace(input.Bio),
			Side:     side,
		})
		return []any{"member_id", member.ID}, addErr
	})
	return
}

// RemoveWeddingPartyMember deletes a wedding party member by id.
func (s *ContentService) RemoveWeddingPartyMember(ctx context.Context, principal Principal, id string) error {
	return s.mutate(ctx, principal, "RemoveWeddingPartyMember", []any{"member_id", id}, func() ([]any, error) {
		return nil, s.store.RemoveWeddingPartyMember(ctx, id)
	})
}

// RemoveAt deletes the item at a display position of a collection, resolved
// against creation order at the time of the call.
func (s *ContentService) RemoveAt(ctx context.Context, principal Principal, c Collection, index int) (id string, err error) {
	err = s.mutate(ctx, principal, "RemoveAt", []any{"collection", c, "index", index}, func() ([]any, error) {
		var removeErr error
		id, removeErr = s.store.RemoveAt(ctx, c, index)
		return []any{"item_id", id}, removeErr
	})
	return
}

// GetPaymentDetails returns the payment details, or ErrNotFound when none were saved.
func (s *ContentService) GetPaymentDetails(ctx context.Context, principal Principal) (PaymentDetails, error) {
	if err := s.ready(); err != nil {
		return PaymentDetails{}, err
	}
	details, ok := s.store.PaymentDetails()
	if !ok {
		return PaymentDetails{}, ErrNotFound
	}
	return details, nil
}

// UpdatePaymentDetails overwrites the payment details singleton.
func (s *ContentService) UpdatePaymentDetails(ctx context.Context, principal Principal, input PaymentDetailsInput) (details PaymentDetails, err error) {
	err = s.mutate(ctx, principal, "UpdatePaymentDetails", nil, func() ([]any, error) {
		vErr := &ValidationError{}
		phone := strings.TrimSpace(input.WhatsAppNumber)
		if phone != "" && NormalizePhoneNumber(phone) == "" {
			vErr.add("whatsapp_number", "whatsapp number must contain digits")
		}
		if vErr.HasErrors() {
			return nil, vErr
		}
		var saveErr error
		details, saveErr = s.store.SavePaymentDetails(ctx, PaymentDetails{
			AccountName:    strings.TrimSpace(input.AccountName),
			AccountNumber:  strings.TrimSpace(input.AccountNumber),
			BankName:       strings.TrimSpace(input.BankName),
			WhatsAppNumber: phone,
		})
		return []any{"details_id", details.ID}, saveErr
	})
	return
}

// Reload re-reads durable state into the store for administrators.
func (s *ContentService) Reload(ctx context.Context, principal Principal) error {
	return s.mutate(ctx, principal, "Reload", nil, func() ([]any, error) {
		return nil, s.store.Reload(ctx)
	})
}
