package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "PORTAL_"

// Config captures environment driven configuration values for the portal service.
type Config struct {
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	SQLiteDSN       string        `env:"SQLITE_DSN" envDefault:"portal.db"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCapacity int           `env:"SESSION_CAPACITY" envDefault:"1024"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses configuration values from the current process environment.
//
// A .env file in the working directory is loaded first when present; values
// already set in the environment take precedence over the file. Invalid
// values are reported together in a single error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env file: %w", err)
	}
	return parse(env.Options{Prefix: EnvPrefix})
}

// LoadFrom parses configuration from the supplied map instead of the process
// environment. Keys must carry EnvPrefix.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("invalid environment configuration: %w", err)
	}

	invalid := make([]string, 0, 4)
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		invalid = append(invalid, EnvPrefix+"HTTP_PORT")
	}
	if strings.TrimSpace(cfg.SQLiteDSN) == "" {
		invalid = append(invalid, EnvPrefix+"SQLITE_DSN")
	}
	if cfg.SessionTTL <= 0 {
		invalid = append(invalid, EnvPrefix+"SESSION_TTL")
	}
	if cfg.SessionCapacity <= 0 {
		invalid = append(invalid, EnvPrefix+"SESSION_CAPACITY")
	}
	if u, err := url.Parse(cfg.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		invalid = append(invalid, EnvPrefix+"PUBLIC_BASE_URL")
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		invalid = append(invalid, EnvPrefix+"LOG_LEVEL")
	}
	if cfg.ShutdownTimeout <= 0 {
		invalid = append(invalid, EnvPrefix+"SHUTDOWN_TIMEOUT")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return cfg, nil
}

// SlogLevel converts the configured log level into a slog.Level.
func (c Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(value string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
