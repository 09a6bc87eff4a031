package sqlite

import (
	"context"
	"fmt"

	"github.com/example/wedding-portal/internal/persistence"
)

func menuTable(kind persistence.MenuKind) (string, error) {
	switch kind {
	case persistence.MenuFood:
		return "food_menu", nil
	case persistence.MenuDrink:
		return "drink_menu", nil
	}
	return "", fmt.Errorf("%w: unknown menu kind %q", persistence.ErrConstraintViolation, kind)
}

func scanMenuItem(row rowScanner) (persistence.MenuItem, error) {
	var (
		item      persistence.MenuItem
		createdAt string
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.ImageURL, &item.Category, &createdAt); err != nil {
		return persistence.MenuItem{}, err
	}
	var err error
	item.CreatedAt, err = parseTime("created_at", createdAt)
	return item, err
}

// ListMenuItems returns the food or drink menu in creation order.
func (s *Storage) ListMenuItems(ctx context.Context, kind persistence.MenuKind) ([]persistence.MenuItem, error) {
	table, err := menuTable(kind)
	if err != nil {
		return nil, err
	}
	return listRows(ctx, s, `SELECT id, name, description, image_url, category, created_at FROM `+table+
		` ORDER BY created_at ASC, rowid ASC`, scanMenuItem)
}

// CreateMenuItem inserts a menu row.
func (s *Storage) CreateMenuItem(ctx context.Context, kind persistence.MenuKind, item persistence.MenuItem) error {
	table, err := menuTable(kind)
	if err != nil {
		return err
	}
	s.stamp(&item.ID, &item.CreatedAt)
	_, err = s.helper.Exec(ctx, `INSERT INTO `+table+` (id, name, description, image_url, category, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Description, item.ImageURL, item.Category, formatTime(item.CreatedAt))
	return s.mapper.MapError(err)
}

// DeleteMenuItem removes a menu row by id.
func (s *Storage) DeleteMenuItem(ctx context.Context, kind persistence.MenuKind, id string) error {
	table, err := menuTable(kind)
	if err != nil {
		return err
	}
	return s.deleteByID(ctx, table, id)
}

func scanGalleryItem(row rowScanner) (persistence.GalleryItem, error) {
	var (
		item      persistence.GalleryItem
		createdAt string
	)
	if err := row.Scan(&item.ID, &item.Title, &item.ImageURL, &item.Type, &createdAt); err != nil {
		return persistence.GalleryItem{}, err
	}
	var err error
	item.CreatedAt, err = parseTime("created_at", createdAt)
	return item, err
}

// ListGalleryItems returns gallery rows in creation order.
func (s *Storage) ListGalleryItems(ctx context.Context) ([]persistence.GalleryItem, error) {
	return listRows(ctx, s, `SELECT id, title, image_url, type, created_at FROM gallery ORDER BY created_at ASC, rowid ASC`, scanGalleryItem)
}

// CreateGalleryItem inserts a gallery row.
func (s *Storage) CreateGalleryItem(ctx context.Context, item persistence.GalleryItem) error {
	s.stamp(&item.ID, &item.CreatedAt)
	_, err := s.helper.Exec(ctx, `INSERT INTO gallery (id, title, image_url, type, created_at) VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.ImageURL, item.Type, formatTime(item.CreatedAt))
	return s.mapper.MapError(err)
}

// DeleteGalleryItem removes a gallery row by id.
func (s *Storage) DeleteGalleryItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "gallery", id)
}

func scanAsoebiItem(row rowScanner) (persistence.AsoebiItem, error) {
	var (
		item      persistence.AsoebiItem
		createdAt string
	)
	if err := row.Scan(&item.ID, &item.Title, &item.Description, &item.ImageURL, &item.Price, &item.Gender,
		&item.Currency, &createdAt); err != nil {
		return persistence.AsoebiItem{}, err
	}
	var err error
	item.CreatedAt, err = parseTime("created_at", createdAt)
	return item, err
}

// ListAsoebiItems returns asoebi rows in creation order.
func (s *Storage) ListAsoebiItems(ctx context.Context) ([]persistence.AsoebiItem, error) {
	return listRows(ctx, s, `SELECT id, title, description, image_url, price, gender, currency, created_at
		FROM asoebi_items ORDER BY created_at ASC, rowid ASC`, scanAsoebiItem)
}

// CreateAsoebiItem inserts an asoebi row.
func (s *Storage) CreateAsoebiItem(ctx context.Context, item persistence.AsoebiItem) error {
	s.stamp(&item.ID, &item.CreatedAt)
	_, err := s.helper.Exec(ctx, `INSERT INTO asoebi_items (id, title, description, image_url, price, gender, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.Description, item.ImageURL, item.Price, item.Gender, item.Currency, formatTime(item.CreatedAt))
	return s.mapper.MapError(err)
}

// DeleteAsoebiItem removes an asoebi row by id.
func (s *Storage) DeleteAsoebiItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "asoebi_items", id)
}

func scanRegistryItem(row rowScanner) (persistence.RegistryItem, error) {
	var (
		item      persistence.RegistryItem
		createdAt string
	)
	if err := row.Scan(&item.ID, &item.Item, &item.Description, &item.ImageURL, &item.Price, &item.Link, &createdAt); err != nil {
		return persistence.RegistryItem{}, err
	}
	var err error
	item.CreatedAt, err = parseTime("created_at", createdAt)
	return item, err
}

// ListRegistryItems returns registry rows in creation order.
func (s *Storage) ListRegistryItems(ctx context.Context) ([]persistence.RegistryItem, error) {
	return listRows(ctx, s, `SELECT id, item, description, image_url, price, link, created_at
		FROM registry_items ORDER BY created_at ASC, rowid ASC`, scanRegistryItem)
}

// CreateRegistryItem inserts a registry row.
func (s *Storage) CreateRegistryItem(ctx context.Context, item persistence.RegistryItem) error {
	s.stamp(&item.ID, &item.CreatedAt)
	_, err := s.helper.Exec(ctx, `INSERT INTO registry_items (id, item, description, image_url, price, link, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Item, item.Description, item.ImageURL, item.Price, item.Link, formatTime(item.CreatedAt))
	return s.mapper.MapError(err)
}

// DeleteRegistryItem removes a registry row by id.
func (s *Storage) DeleteRegistryItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "registry_items", id)
}

func scanWeddingPartyMember(row rowScanner) (persistence.WeddingPartyMember, error) {
	var (
		member    persistence.WeddingPartyMember
		createdAt string
	)
	if err := row.Scan(&member.ID, &member.Name, &member.Role, &member.ImageURL, &member.Bio, &member.Side, &createdAt); err != nil {
		return persistence.WeddingPartyMember{}, err
	}
	var err error
	member.CreatedAt, err = parseTime("created_at", createdAt)
	return member, err
}

// ListWeddingParty returns wedding party rows in creation order.
func (s *Storage) ListWeddingParty(ctx context.Context) ([]persistence.WeddingPartyMember, error) {
	return listRows(ctx, s, `SELECT id, name, role, image_url, bio, side, created_at
		FROM wedding_party ORDER BY created_at ASC, rowid ASC`, scanWeddingPartyMember)
}

// CreateWeddingPartyMember inserts a wedding party row.
func (s *Storage) CreateWeddingPartyMember(ctx context.Context, member persistence.WeddingPartyMember) error {
	s.stamp(&member.ID, &member.CreatedAt)
	_, err := s.helper.Exec(ctx, `INSERT INTO wedding_party (id, name, role, image_url, bio, side, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		member.ID, member.Name, member.Role, member.ImageURL, member.Bio, member.Side, formatTime(member.CreatedAt))
	return s.mapper.MapError(err)
}

// DeleteWeddingPartyMember removes a wedding party row by id.
func (s *Storage) DeleteWeddingPartyMember(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "wedding_party", id)
}

var (
	_ persistence.SettingsRepository       = (*Storage)(nil)
	_ persistence.PaymentDetailsRepository = (*Storage)(nil)
	_ persistence.GuestRepository          = (*Storage)(nil)
	_ persistence.MenuRepository           = (*Storage)(nil)
	_ persistence.GalleryRepository        = (*Storage)(nil)
	_ persistence.AsoebiRepository         = (*Storage)(nil)
	_ persistence.RegistryRepository       = (*Storage)(nil)
	_ persistence.WeddingPartyRepository   = (*Storage)(nil)
)
