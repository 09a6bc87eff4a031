package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/wedding-portal/internal/persistence"
)

const guestColumns = `id, access_code, name, seat_number, arrived, meal_served, drink_served,
	selected_food, selected_drink, category, created_at, updated_at`

func scanGuest(row rowScanner) (persistence.Guest, error) {
	var (
		guest                persistence.Guest
		seat                 sql.NullInt64
		food, drink          sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&guest.ID, &guest.AccessCode, &guest.Name, &seat, &guest.Arrived, &guest.MealServed,
		&guest.DrinkServed, &food, &drink, &guest.Category, &createdAt, &updatedAt); err != nil {
		return persistence.Guest{}, err
	}

	var err error
	if guest.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Guest{}, err
	}
	if guest.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Guest{}, err
	}
	guest.SeatNumber = intPtr(seat)
	guest.SelectedFood = stringPtr(food)
	guest.SelectedDrink = stringPtr(drink)
	return guest, nil
}

// ListGuests returns every guest in creation order.
func (s *Storage) ListGuests(ctx context.Context) ([]persistence.Guest, error) {
	return listRows(ctx, s, `SELECT `+guestColumns+` FROM guests ORDER BY created_at ASC, rowid ASC`, scanGuest)
}

// GetGuestByCode returns the guest holding accessCode.
func (s *Storage) GetGuestByCode(ctx context.Context, accessCode string) (persistence.Guest, error) {
	if accessCode == "" {
		return persistence.Guest{}, persistence.ErrNotFound
	}
	guest, err := scanGuest(s.helper.QueryRow(ctx, `SELECT `+guestColumns+` FROM guests WHERE access_code = ?`, accessCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Guest{}, persistence.ErrNotFound
		}
		return persistence.Guest{}, s.mapper.MapError(err)
	}
	return guest, nil
}

// CreateGuest inserts a guest row. The access code must be unused.
func (s *Storage) CreateGuest(ctx context.Context, guest persistence.Guest) error {
	if guest.AccessCode == "" {
		return persistence.ErrConstraintViolation
	}
	s.stamp(&guest.ID, &guest.CreatedAt)
	if guest.UpdatedAt.IsZero() {
		guest.UpdatedAt = guest.CreatedAt
	}
	if guest.Category == "" {
		guest.Category = "regular"
	}

	_, err := s.helper.Exec(ctx, `INSERT INTO guests (`+guestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		guest.ID, guest.AccessCode, guest.Name, nullInt(guest.SeatNumber), guest.Arrived, guest.MealServed,
		guest.DrinkServed, nullString(guest.SelectedFood), nullString(guest.SelectedDrink), guest.Category,
		formatTime(guest.CreatedAt), formatTime(guest.UpdatedAt))
	return s.mapper.MapError(err)
}

// UpdateGuest overwrites the mutable fields of the guest matched by access code.
func (s *Storage) UpdateGuest(ctx context.Context, guest persistence.Guest) error {
	if guest.AccessCode == "" {
		return persistence.ErrNotFound
	}
	if guest.UpdatedAt.IsZero() {
		guest.UpdatedAt = s.now()
	}

	result, err := s.helper.Exec(ctx, `
		UPDATE guests
		SET name = ?, seat_number = ?, arrived = ?, meal_served = ?, drink_served = ?,
			selected_food = ?, selected_drink = ?, category = ?, updated_at = ?
		WHERE access_code = ?`,
		guest.Name, nullInt(guest.SeatNumber), guest.Arrived, guest.MealServed, guest.DrinkServed,
		nullString(guest.SelectedFood), nullString(guest.SelectedDrink), guest.Category,
		formatTime(guest.UpdatedAt), guest.AccessCode)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return expectOneRow(result)
}
