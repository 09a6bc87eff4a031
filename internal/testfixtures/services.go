package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/wedding-portal/internal/application"
)

// ServiceFactory builds a store and its services with deterministic ids,
// clock, access codes and session tokens.
type ServiceFactory struct {
	Clock    *Clock
	IDs      *Sequence
	Tokens   *Sequence
	Codes    *ByteSource
	Logger   *slog.Logger
	Capacity int
	TTL      time.Duration
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory returns a factory with a ticking clock starting at EventEve.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:    NewTickingClock(time.Time{}, time.Millisecond),
		IDs:      NewSequence("id"),
		Tokens:   NewSequence("token"),
		Codes:    NewByteSource(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16),
		Capacity: 64,
		TTL:      time.Hour,
	}
	for _, opt := range opts {
		opt(factory)
	}
	return factory
}

// WithClock overrides the clock.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(f *ServiceFactory) {
		f.Clock = clock
	}
}

// WithCodeBytes overrides the bytes access codes are drawn from.
func WithCodeBytes(pattern ...byte) ServiceFactoryOption {
	return func(f *ServiceFactory) {
		f.Codes = NewByteSource(pattern...)
	}
}

// WithLogger sets the logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(f *ServiceFactory) {
		f.Logger = logger
	}
}

// Portal bundles a store with the services that operate on it.
type Portal struct {
	Store    *application.Store
	Auth     *application.AuthService
	Settings *application.SettingsService
	Guests   *application.GuestService
	Content  *application.ContentService
}

// NewStore returns an unloaded store over repos. Zero value repositories
// give a memory only store.
func (f *ServiceFactory) NewStore(repos application.Repositories) *application.Store {
	return application.NewStore(repos, f.IDs.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// NewPortal wires every service over a store built from repos. The caller
// loads the store when repos hold data.
func (f *ServiceFactory) NewPortal(repos application.Repositories) Portal {
	store := f.NewStore(repos)
	now := f.Clock.NowFunc()
	return Portal{
		Store:    store,
		Auth:     application.NewAuthServiceWithLogger(store, application.NewSessionCache(f.Capacity, f.TTL), f.Tokens.NextFunc(), now, f.Logger),
		Settings: application.NewSettingsServiceWithLogger(store, now, f.Logger),
		Guests:   application.NewGuestServiceWithLogger(store, application.NewCodeGenerator(f.Codes), f.Logger),
		Content:  application.NewContentServiceWithLogger(store, f.Logger),
	}
}
