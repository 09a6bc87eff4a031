package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/wedding-portal/internal/persistence"
)

const settingsColumns = `id, couple_names, event_date, venue, max_seats, seats_per_table,
	welcome_image, guest_photos_link, created_at, updated_at`

// LatestSettings returns the newest settings row.
func (s *Storage) LatestSettings(ctx context.Context) (persistence.Settings, error) {
	row := s.helper.QueryRow(ctx, `SELECT `+settingsColumns+` FROM settings ORDER BY created_at DESC, rowid DESC LIMIT 1`)

	var (
		settings                        persistence.Settings
		eventDate, createdAt, updatedAt string
		welcomeImage, photosLink        sql.NullString
	)
	err := row.Scan(&settings.ID, &settings.CoupleNames, &eventDate, &settings.Venue, &settings.MaxSeats,
		&settings.SeatsPerTable, &welcomeImage, &photosLink, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Settings{}, persistence.ErrNotFound
		}
		return persistence.Settings{}, s.mapper.MapError(err)
	}

	if settings.EventDate, err = parseTime("event_date", eventDate); err != nil {
		return persistence.Settings{}, err
	}
	if settings.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Settings{}, err
	}
	if settings.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Settings{}, err
	}
	settings.WelcomeImage = stringPtr(welcomeImage)
	settings.GuestPhotosLink = stringPtr(photosLink)
	return settings, nil
}

// CreateSettings inserts a settings row.
func (s *Storage) CreateSettings(ctx context.Context, settings persistence.Settings) error {
	s.stamp(&settings.ID, &settings.CreatedAt)
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = settings.CreatedAt
	}

	_, err := s.helper.Exec(ctx, `INSERT INTO settings (`+settingsColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settings.ID, settings.CoupleNames, formatTime(settings.EventDate), settings.Venue, settings.MaxSeats,
		settings.SeatsPerTable, nullString(settings.WelcomeImage), nullString(settings.GuestPhotosLink),
		formatTime(settings.CreatedAt), formatTime(settings.UpdatedAt))
	return s.mapper.MapError(err)
}

// UpdateSettings overwrites the settings row with the same id.
func (s *Storage) UpdateSettings(ctx context.Context, settings persistence.Settings) error {
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = s.now()
	}

	result, err := s.helper.Exec(ctx, `
		UPDATE settings
		SET couple_names = ?, event_date = ?, venue = ?, max_seats = ?, seats_per_table = ?,
			welcome_image = ?, guest_photos_link = ?, updated_at = ?
		WHERE id = ?`,
		settings.CoupleNames, formatTime(settings.EventDate), settings.Venue, settings.MaxSeats, settings.SeatsPerTable,
		nullString(settings.WelcomeImage), nullString(settings.GuestPhotosLink), formatTime(settings.UpdatedAt), settings.ID)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return expectOneRow(result)
}

const paymentColumns = `id, account_name, account_number, bank_name, whatsapp_number, created_at, updated_at`

// LatestPaymentDetails returns the newest payment details row.
func (s *Storage) LatestPaymentDetails(ctx context.Context) (persistence.PaymentDetails, error) {
	row := s.helper.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_details ORDER BY created_at DESC, rowid DESC LIMIT 1`)

	var (
		details              persistence.PaymentDetails
		createdAt, updatedAt string
	)
	err := row.Scan(&details.ID, &details.AccountName, &details.AccountNumber, &details.BankName,
		&details.WhatsAppNumber, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.PaymentDetails{}, persistence.ErrNotFound
		}
		return persistence.PaymentDetails{}, s.mapper.MapError(err)
	}

	if details.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.PaymentDetails{}, err
	}
	if details.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.PaymentDetails{}, err
	}
	return details, nil
}

// CreatePaymentDetails inserts a payment details row.
func (s *Storage) CreatePaymentDetails(ctx context.Context, details persistence.PaymentDetails) error {
	s.stamp(&details.ID, &details.CreatedAt)
	if details.UpdatedAt.IsZero() {
		details.UpdatedAt = details.CreatedAt
	}

	_, err := s.helper.Exec(ctx, `INSERT INTO payment_details (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		details.ID, details.AccountName, details.AccountNumber, details.BankName, details.WhatsAppNumber,
		formatTime(details.CreatedAt), formatTime(details.UpdatedAt))
	return s.mapper.MapError(err)
}

// UpdatePaymentDetails overwrites the payment details row with the same id.
func (s *Storage) UpdatePaymentDetails(ctx context.Context, details persistence.PaymentDetails) error {
	if details.UpdatedAt.IsZero() {
		details.UpdatedAt = s.now()
	}

	result, err := s.helper.Exec(ctx, `
		UPDATE payment_details
		SET account_name = ?, account_number = ?, bank_name = ?, whatsapp_number = ?, updated_at = ?
		WHERE id = ?`,
		details.AccountName, details.AccountNumber, details.BankName, details.WhatsAppNumber,
		formatTime(details.UpdatedAt), details.ID)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return expectOneRow(result)
}
