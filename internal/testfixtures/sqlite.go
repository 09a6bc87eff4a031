package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/wedding-portal/internal/logging"
	"github.com/example/wedding-portal/internal/persistence"
	"github.com/example/wedding-portal/internal/persistence/sqlite"
)

// SQLiteHarness exposes the portal repositories backed by a migrated SQLite
// file in a temporary directory.
type SQLiteHarness struct {
	Storage      *sqlite.Storage
	Path         string
	Settings     persistence.SettingsRepository
	Payment      persistence.PaymentDetailsRepository
	Guests       persistence.GuestRepository
	Menus        persistence.MenuRepository
	Gallery      persistence.GalleryRepository
	Asoebi       persistence.AsoebiRepository
	Registry     persistence.RegistryRepository
	WeddingParty persistence.WeddingPartyRepository

	cleanup func()
}

// Close releases the database handle. It is also registered with tb.Cleanup.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a fresh database under tb.TempDir.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "portal.db")
	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := storage.Migrate(context.Background(), logging.Discard()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:      storage,
		Path:         path,
		Settings:     storage,
		Payment:      storage,
		Guests:       storage,
		Menus:        storage,
		Gallery:      storage,
		Asoebi:       storage,
		Registry:     storage,
		WeddingParty: storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}
