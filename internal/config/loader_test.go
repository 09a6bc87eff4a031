package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		cfg, err := LoadFrom(map[string]string{})
		if err != nil {
			t.Fatalf("LoadFrom returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "portal.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL of 24h, got %v", cfg.SessionTTL)
		}
		if cfg.SessionCapacity != 1024 {
			t.Fatalf("expected default session capacity 1024, got %d", cfg.SessionCapacity)
		}
		if cfg.SlogLevel() != slog.LevelInfo {
			t.Fatalf("expected info level, got %v", cfg.SlogLevel())
		}
	})

	t.Run("reads prefixed overrides", func(t *testing.T) {
		cfg, err := LoadFrom(map[string]string{
			"PORTAL_HTTP_PORT":       "9090",
			"PORTAL_SQLITE_DSN":      "/tmp/wedding.db",
			"PORTAL_SESSION_TTL":     "2h",
			"PORTAL_PUBLIC_BASE_URL": "https://wedding.example.com/",
			"PORTAL_LOG_LEVEL":       "debug",
		})
		if err != nil {
			t.Fatalf("LoadFrom returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "/tmp/wedding.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 2*time.Hour {
			t.Fatalf("expected TTL 2h, got %v", cfg.SessionTTL)
		}
		if cfg.PublicBaseURL != "https://wedding.example.com" {
			t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.PublicBaseURL)
		}
		if cfg.SlogLevel() != slog.LevelDebug {
			t.Fatalf("expected debug level, got %v", cfg.SlogLevel())
		}
	})

	t.Run("aggregates invalid values", func(t *testing.T) {
		_, err := LoadFrom(map[string]string{
			"PORTAL_HTTP_PORT":        "-1",
			"PORTAL_SESSION_CAPACITY": "0",
			"PORTAL_LOG_LEVEL":        "loud",
		})
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		for _, key := range []string{"PORTAL_HTTP_PORT", "PORTAL_SESSION_CAPACITY", "PORTAL_LOG_LEVEL"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in error, got %q", key, err.Error())
			}
		}
	})

	t.Run("rejects unparsable durations", func(t *testing.T) {
		_, err := LoadFrom(map[string]string{"PORTAL_SESSION_TTL": "soon"})
		if err == nil {
			t.Fatal("expected parse error for invalid duration")
		}
	})
}
