package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestFileScanner_Scan(t *testing.T) {
	t.Parallel()

	t.Run("orders files by numeric version", func(t *testing.T) {
		t.Parallel()

		files := fstest.MapFS{
			"migrations/010_add_index.sql":       {Data: []byte("CREATE INDEX idx ON guests(name);")},
			"migrations/002_create_guests.sql":   {Data: []byte("-- Description: guest table\nCREATE TABLE guests (id TEXT);")},
			"migrations/001_create_settings.sql": {Data: []byte("CREATE TABLE settings (id TEXT);")},
			"migrations/README.md":               {Data: []byte("ignored")},
		}

		migrations, err := NewFileScanner(files, "migrations").Scan()
		if err != nil {
			t.Fatalf("Scan returned error: %v", err)
		}

		got := make([]string, 0, len(migrations))
		for _, m := range migrations {
			got = append(got, m.Version)
		}
		want := []string{"001", "002", "010"}
		if len(got) != len(want) {
			t.Fatalf("expected versions %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected versions %v, got %v", want, got)
			}
		}

		if migrations[0].Description != "create settings" {
			t.Fatalf("expected filename description, got %q", migrations[0].Description)
		}
		if migrations[1].Description != "guest table" {
			t.Fatalf("expected content description, got %q", migrations[1].Description)
		}
		if migrations[0].Checksum == "" {
			t.Fatal("expected checksum to be populated")
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		t.Parallel()

		files := fstest.MapFS{
			"m/001_a.sql": {Data: []byte("SELECT 1;")},
			"m/001_b.sql": {Data: []byte("SELECT 2;")},
		}
		_, err := NewFileScanner(files, "m").Scan()
		if !errors.Is(err, ErrDuplicateVersion) {
			t.Fatalf("expected ErrDuplicateVersion, got %v", err)
		}
	})

	t.Run("rejects malformed names and empty files", func(t *testing.T) {
		t.Parallel()

		cases := map[string]fstest.MapFS{
			"bad name":     {"m/init.sql": {Data: []byte("SELECT 1;")}},
			"comment only": {"m/001_empty.sql": {Data: []byte("-- nothing here\n")}},
		}
		for name, files := range cases {
			if _, err := NewFileScanner(files, "m").Scan(); !errors.Is(err, ErrInvalidMigrationFile) {
				t.Fatalf("%s: expected ErrInvalidMigrationFile, got %v", name, err)
			}
		}
	})
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	statements := splitStatements(`
-- leading comment
CREATE TABLE a (id TEXT);

-- second
CREATE TABLE b (id TEXT);
`)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(statements), statements)
	}
	if statements[1] != "CREATE TABLE b (id TEXT)" {
		t.Fatalf("unexpected statement: %q", statements[1])
	}
}
