package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/wedding-portal/internal/application"
)

type RouterConfig struct {
	Sessions   *SessionHandler
	Settings   *SettingsHandler
	Guests     *GuestHandler
	Content    *ContentHandler
	Health     *HealthHandler
	Validator  SessionValidator
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	protected := http.NewServeMux()

	if cfg.Health != nil {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Health.Check(w, r)
		})
	}

	if cfg.Sessions != nil {
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Sessions.CreateSession(w, r)
		})
		protected.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Sessions.DeleteCurrentSession(w, r)
		})
	}

	if cfg.Settings != nil {
		protected.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Settings.Get(w, r)
			case http.MethodPut:
				cfg.Settings.Update(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})
		handleGet(protected, "/dashboard", cfg.Settings.Dashboard)
		handleGet(protected, "/countdown", cfg.Settings.Countdown)
	}

	if cfg.Guests != nil {
		protected.HandleFunc("/guests", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Guests.List(w, r)
			case http.MethodPost:
				cfg.Guests.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		protected.HandleFunc("/guests/{code}", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			cfg.Guests.Update(w, r)
		})
		handleGet(protected, "/guests/{code}/qr", cfg.Guests.QRCode)
		handleGet(protected, "/guests/cards.pdf", cfg.Guests.Cards)
		handlePost(protected, "/guests/import", cfg.Guests.Import)
		protected.HandleFunc("/access-codes", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Guests.PendingCodes(w, r)
			case http.MethodPost:
				cfg.Guests.GenerateCodes(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		handlePost(protected, "/access-codes/{code}/claim", cfg.Guests.ClaimCode)
		handleGet(protected, "/me", cfg.Guests.Me)
		handlePost(protected, "/me/arrival", cfg.Guests.ConfirmArrival)
		handleGet(protected, "/seats", cfg.Guests.Seats)
	}

	if cfg.Content != nil {
		c := cfg.Content
		handleCollection(protected, "/gallery", c.ListGallery, c.AddGalleryItem, c.RemoveGalleryItem)
		handleCollection(protected, "/menu/food", c.ListMenu(application.MenuFood), c.AddMenuItem(application.MenuFood), c.RemoveMenuItem(application.MenuFood))
		handleCollection(protected, "/menu/drinks", c.ListMenu(application.MenuDrink), c.AddMenuItem(application.MenuDrink), c.RemoveMenuItem(application.MenuDrink))
		handleCollection(protected, "/asoebi", c.ListAsoebi, c.AddAsoebiItem, c.RemoveAsoebiItem)
		handleGet(protected, "/asoebi/{id}/order-link", c.AsoebiOrderLink)
		handleCollection(protected, "/registry", c.ListRegistry, c.AddRegistryItem, c.RemoveRegistryItem)
		handleCollection(protected, "/wedding-party", c.ListWeddingParty, c.AddWeddingPartyMember, c.RemoveWeddingPartyMember)
		protected.HandleFunc("/collections/{collection}/{index}", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			c.RemoveAt(w, r)
		})
		protected.HandleFunc("/payment-details", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				c.GetPaymentDetails(w, r)
			case http.MethodPut:
				c.UpdatePaymentDetails(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})
		handlePost(protected, "/admin/reload", c.Reload)
	}

	var guarded http.Handler = protected
	if cfg.Validator != nil {
		guarded = RequireSession(cfg.Validator, cfg.Logger)(protected)
	}
	mux.Handle("/", guarded)

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func handleGet(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h(w, r)
	})
}

func handlePost(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h(w, r)
	})
}

// handleCollection registers list and create on base and delete on base/{id}.
func handleCollection(mux *http.ServeMux, base string, list, create, remove http.HandlerFunc) {
	mux.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(w, r)
		case http.MethodPost:
			create(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})
	mux.HandleFunc(base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, http.MethodDelete)
			return
		}
		remove(w, r)
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
