// Package sqlite implements the portal repositories on top of modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/wedding-portal/internal/persistence"
	"github.com/example/wedding-portal/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// timeLayout is fixed width so that text ordering matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Storage bundles every repository over one connection pool.
type Storage struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
	newID  func() string
}

// Open connects to the database at path with DefaultOptions.
func Open(path string) (*Storage, error) {
	return OpenWithOptions(DefaultOptions(path))
}

// OpenWithOptions connects using explicit pool options.
func OpenWithOptions(opts Options) (*Storage, error) {
	pool, err := NewConnectionPool(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping reports whether the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := migration.NewManager(
		migration.NewFileScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		logger,
	)
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// stamp fills a missing id and creation time.
func (s *Storage) stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = s.newID()
	}
	if createdAt.IsZero() {
		*createdAt = s.now()
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(column, value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, value)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t.UTC(), nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func intPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// listRows runs query and scans every row with scan.
func listRows[T any](ctx context.Context, s *Storage, query string, scan func(rowScanner) (T, error), args ...any) ([]T, error) {
	rows, err := s.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return items, nil
}

// deleteByID removes the row with id from table.
func (s *Storage) deleteByID(ctx context.Context, table, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := s.helper.Exec(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return expectOneRow(result)
}
