package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/wedding-portal/internal/application"
	"github.com/example/wedding-portal/internal/cards"
	"github.com/example/wedding-portal/internal/config"
	httptransport "github.com/example/wedding-portal/internal/http"
	"github.com/example/wedding-portal/internal/logging"
	"github.com/example/wedding-portal/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.SlogLevel())

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("portal stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	handler, err := buildHandler(ctx, cfg, storage, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("wedding portal listening", "addr", server.Addr, "public_base_url", cfg.PublicBaseURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// buildHandler migrates storage, loads the store and wires every service and
// handler into the router.
func buildHandler(ctx context.Context, cfg config.Config, storage *sqlite.Storage, logger *slog.Logger) (http.Handler, error) {
	if err := storage.Migrate(ctx, logger); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	now := time.Now
	store := application.NewStore(newRepositories(storage), uuid.NewString, now, logger)
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}

	sessions := application.NewSessionCache(cfg.SessionCapacity, cfg.SessionTTL)
	authService := application.NewAuthServiceWithLogger(store, sessions, application.NewSessionToken, now, logger)
	settingsService := application.NewSettingsServiceWithLogger(store, now, logger)
	guestService := application.NewGuestServiceWithLogger(store, application.NewCodeGenerator(nil), logger)
	contentService := application.NewContentServiceWithLogger(store, logger)

	secureCookie := strings.HasPrefix(strings.ToLower(cfg.PublicBaseURL), "https://")

	return httptransport.NewRouter(httptransport.RouterConfig{
		Sessions:   httptransport.NewSessionHandler(authService, secureCookie, logger),
		Settings:   httptransport.NewSettingsHandler(settingsService, logger),
		Guests:     httptransport.NewGuestHandler(guestService, settingsService, cards.NewRenderer(cfg.PublicBaseURL), logger),
		Content:    httptransport.NewContentHandler(contentService, logger),
		Health:     httptransport.NewHealthHandler(storage, logger),
		Validator:  authService,
		Logger:     logger,
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	}), nil
}
