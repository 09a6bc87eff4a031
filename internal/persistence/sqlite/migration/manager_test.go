package migration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/wedding-portal/internal/logging"
)

type stubScanner struct {
	migrations []Migration
	err        error
}

func (s stubScanner) Scan() ([]Migration, error) {
	return s.migrations, s.err
}

type stubExecutor struct {
	applied  []AppliedMigration
	executed []string
	failOn   string
}

func (e *stubExecutor) InitializeVersionTable(context.Context) error { return nil }

func (e *stubExecutor) ExecuteMigration(_ context.Context, m Migration) error {
	if m.Version == e.failOn {
		return errors.New("boom")
	}
	e.executed = append(e.executed, m.Version)
	return nil
}

func (e *stubExecutor) RecordMigration(_ context.Context, m Migration, d time.Duration) error {
	e.applied = append(e.applied, AppliedMigration{Version: m.Version, Checksum: m.Checksum, ExecutionTime: d})
	return nil
}

func (e *stubExecutor) AppliedVersions(context.Context) ([]AppliedMigration, error) {
	return append([]AppliedMigration(nil), e.applied...), nil
}

func TestManager_Run(t *testing.T) {
	t.Parallel()

	files := []Migration{
		{Version: "001", Checksum: "a"},
		{Version: "002", Checksum: "b"},
	}

	t.Run("applies only pending migrations", func(t *testing.T) {
		t.Parallel()

		executor := &stubExecutor{applied: []AppliedMigration{{Version: "001", Checksum: "a"}}}
		manager := NewManager(stubScanner{migrations: files}, executor, logging.Discard())

		if err := manager.Run(context.Background()); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if len(executor.executed) != 1 || executor.executed[0] != "002" {
			t.Fatalf("expected only 002 to run, got %v", executor.executed)
		}

		status, err := manager.Status(context.Background())
		if err != nil {
			t.Fatalf("Status returned error: %v", err)
		}
		if status.CurrentVersion != "002" || len(status.Pending) != 0 {
			t.Fatalf("unexpected status: %+v", status)
		}
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		t.Parallel()

		executor := &stubExecutor{failOn: "001"}
		manager := NewManager(stubScanner{migrations: files}, executor, logging.Discard())

		err := manager.Run(context.Background())
		if !errors.Is(err, ErrMigrationFailed) {
			t.Fatalf("expected ErrMigrationFailed, got %v", err)
		}
		if len(executor.applied) != 0 {
			t.Fatalf("expected nothing recorded, got %v", executor.applied)
		}
	})

	t.Run("detects edited migrations", func(t *testing.T) {
		t.Parallel()

		executor := &stubExecutor{applied: []AppliedMigration{{Version: "001", Checksum: "changed"}}}
		manager := NewManager(stubScanner{migrations: files}, executor, logging.Discard())

		if err := manager.Run(context.Background()); !errors.Is(err, ErrChecksumMismatch) {
			t.Fatalf("expected ErrChecksumMismatch, got %v", err)
		}
	})
}
