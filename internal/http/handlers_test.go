package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/wedding-portal/internal/application"
	"github.com/example/wedding-portal/internal/cards"
	"github.com/example/wedding-portal/internal/logging"
	"github.com/example/wedding-portal/internal/testfixtures"
)

type stubAuth struct {
	loggedOut []string
}

func (s *stubAuth) Login(_ context.Context, code string) (application.Session, error) {
	switch code {
	case application.AdminCode:
		return application.Session{Token: "admin-token", Principal: application.Principal{AccessCode: code, IsAdmin: true}, ExpiresAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}, nil
	case "ABC123":
		return application.Session{Token: "guest-token", Principal: application.Principal{AccessCode: code}, ExpiresAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}, nil
	}
	return application.Session{}, application.ErrInvalidCode
}

func (s *stubAuth) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

type stubSettings struct {
	settingsService
	settings application.Settings
	err      error
}

func (s *stubSettings) GetSettings(context.Context, application.Principal) (application.Settings, error) {
	return s.settings, s.err
}

func (s *stubSettings) UpdateSettings(_ context.Context, params application.UpdateSettingsParams) (application.Settings, error) {
	if s.err != nil {
		return application.Settings{}, s.err
	}
	s.settings.CoupleNames = params.Input.CoupleNames
	s.settings.EventDate = params.Input.EventDate
	return s.settings, nil
}

type stubGuests struct {
	guestService
	guests    []application.GuestDetails
	lastPatch application.UpdateGuestParams
	imported  string
	err       error
}

func (s *stubGuests) ListGuests(context.Context, application.Principal, string) ([]application.GuestDetails, error) {
	return s.guests, s.err
}

func (s *stubGuests) UpdateGuest(_ context.Context, params application.UpdateGuestParams) (application.Guest, error) {
	s.lastPatch = params
	if s.err != nil {
		return application.Guest{}, s.err
	}
	return application.Guest{AccessCode: params.AccessCode, Name: "Ada"}, nil
}

func (s *stubGuests) ImportCSV(_ context.Context, _ application.Principal, r io.Reader) ([]application.Guest, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.imported = string(body)
	return []application.Guest{{AccessCode: "IMP001", Name: "Imported"}}, nil
}

func (s *stubGuests) GenerateAccessCodes(_ context.Context, principal application.Principal, n int) ([]string, error) {
	if !principal.IsAdmin {
		return nil, application.ErrUnauthorized
	}
	codes := make([]string, n)
	for i := range codes {
		codes[i] = strings.Repeat(string(rune('A'+i)), 6)
	}
	return codes, nil
}

type stubRenderer struct {
	rendered []cards.Card
}

func (s *stubRenderer) QRCode(code string, size int) ([]byte, error) {
	return []byte("png:" + code), nil
}

func (s *stubRenderer) Render(w io.Writer, _ cards.Event, guests []cards.Card) error {
	if len(guests) == 0 {
		return cards.ErrNoCards
	}
	s.rendered = guests
	_, err := io.WriteString(w, "%PDF-1.3")
	return err
}

type stubContent struct {
	contentService
	removed  []string
	menuKind application.MenuKind
	err      error
}

func (s *stubContent) RemoveGalleryItem(_ context.Context, _ application.Principal, id string) error {
	s.removed = append(s.removed, id)
	return s.err
}

func (s *stubContent) ListMenu(_ context.Context, _ application.Principal, kind application.MenuKind) ([]application.MenuItem, error) {
	s.menuKind = kind
	return []application.MenuItem{{ID: "m1", Name: "Zobo", Category: "non-alcoholic"}}, nil
}

func (s *stubContent) AddAsoebiItem(context.Context, application.Principal, application.AsoebiInput) (application.AsoebiItem, error) {
	return application.AsoebiItem{}, &application.ValidationError{FieldErrors: map[string]string{"price": "price must be greater than zero"}}
}

func (s *stubContent) RemoveAt(_ context.Context, _ application.Principal, c application.Collection, index int) (string, error) {
	if c != application.CollectionRegistry || index != 2 {
		return "", application.ErrNotFound
	}
	return "r3", nil
}

type routerFixture struct {
	auth     *stubAuth
	settings *stubSettings
	guests   *stubGuests
	content  *stubContent
	renderer *stubRenderer
	handler  http.Handler
}

func newRouterFixture() *routerFixture {
	logger := logging.Discard()
	f := &routerFixture{
		auth:     &stubAuth{},
		settings: &stubSettings{settings: application.DefaultSettings()},
		guests:   &stubGuests{},
		content:  &stubContent{},
		renderer: &stubRenderer{},
	}
	validator := stubValidator{sessions: map[string]application.Session{
		"admin-token": {Token: "admin-token", Principal: application.Principal{AccessCode: application.AdminCode, IsAdmin: true}},
		"guest-token": {Token: "guest-token", Principal: application.Principal{AccessCode: "ABC123"}},
	}}
	f.handler = NewRouter(RouterConfig{
		Sessions:  NewSessionHandler(f.auth, false, logger),
		Settings:  NewSettingsHandler(f.settings, logger),
		Guests:    NewGuestHandler(f.guests, f.settings, f.renderer, logger),
		Content:   NewContentHandler(f.content, logger),
		Health:    NewHealthHandler(nil, logger),
		Validator: validator,
		Logger:    logger,
	})
	return f
}

func (f *routerFixture) do(method, path, token string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", recorder.Body.String(), err)
	}
}

func TestSessionHandlerMatchesCodesExactly(t *testing.T) {
	t.Parallel()

	portal := testfixtures.NewServiceFactory().NewPortal(application.Repositories{})
	guest, err := portal.Guests.AddGuest(context.Background(), application.AddGuestParams{
		Principal: testfixtures.AdminPrincipal(),
		Input:     application.GuestInput{Name: "Ada"},
	})
	if err != nil {
		t.Fatalf("AddGuest returned error: %v", err)
	}
	handler := NewSessionHandler(portal.Auth, false, logging.Discard())

	tests := []struct {
		name   string
		code   string
		status int
	}{
		{name: "admin", code: application.AdminCode, status: http.StatusCreated},
		{name: "guest", code: guest.AccessCode, status: http.StatusCreated},
		{name: "padded admin", code: " ADMIN ", status: http.StatusUnauthorized},
		{name: "admin with newline", code: "ADMIN\n", status: http.StatusUnauthorized},
		{name: "admin with leading tab", code: "\tADMIN", status: http.StatusUnauthorized},
		{name: "lowercase admin", code: "admin", status: http.StatusUnauthorized},
		{name: "padded guest", code: " " + guest.AccessCode, status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(loginRequest{Code: tt.code})
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(payload))
			recorder := httptest.NewRecorder()
			handler.CreateSession(recorder, req)
			if recorder.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", recorder.Code, tt.status, recorder.Body.String())
			}
			if tt.status == http.StatusUnauthorized && !strings.Contains(recorder.Body.String(), "AUTH_INVALID_CODE") {
				t.Fatalf("expected AUTH_INVALID_CODE, got %s", recorder.Body.String())
			}
		})
	}
}

func TestSessionHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodPost, "/sessions", "", strings.NewReader(`{"code":"ABC123"}`), nil)
		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
		}
		if got := recorder.Header().Get("X-Session-Token"); got != "guest-token" {
			t.Fatalf("X-Session-Token = %q", got)
		}
		cookies := recorder.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != sessionCookieName || cookies[0].Value != "guest-token" || !cookies[0].HttpOnly {
			t.Fatalf("unexpected cookies %+v", cookies)
		}
		var body loginResponse
		decodeBody(t, recorder, &body)
		if body.Principal.AccessCode != "ABC123" || body.Principal.IsAdmin {
			t.Fatalf("unexpected principal %+v", body.Principal)
		}
	})

	t.Run("admin principal hides the access code", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodPost, "/sessions", "", strings.NewReader(`{"code":"ADMIN"}`), nil)
		var body loginResponse
		decodeBody(t, recorder, &body)
		if !body.Principal.IsAdmin || body.Principal.AccessCode != "" {
			t.Fatalf("unexpected principal %+v", body.Principal)
		}
	})

	t.Run("invalid codes map to AUTH_INVALID_CODE", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodPost, "/sessions", "", strings.NewReader(`{"code":"nope"}`), nil)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", recorder.Code)
		}
		var body errorResponse
		decodeBody(t, recorder, &body)
		if body.ErrorCode != "AUTH_INVALID_CODE" {
			t.Fatalf("error_code = %q", body.ErrorCode)
		}
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		if recorder := f.do(http.MethodPost, "/sessions", "", strings.NewReader(`{`), nil); recorder.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", recorder.Code)
		}
	})

	t.Run("logout revokes the session and clears the cookie", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodDelete, "/sessions/current", "guest-token", nil, nil)
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d", recorder.Code)
		}
		if len(f.auth.loggedOut) != 1 || f.auth.loggedOut[0] != "guest-token" {
			t.Fatalf("logged out = %v", f.auth.loggedOut)
		}
		cookies := recorder.Result().Cookies()
		if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
			t.Fatalf("expected clearing cookie, got %+v", cookies)
		}
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	t.Run("public and protected routes", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		tests := []struct {
			name       string
			method     string
			path       string
			token      string
			wantStatus int
		}{
			{name: "healthz is public", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK},
			{name: "settings require a session", method: http.MethodGet, path: "/settings", wantStatus: http.StatusUnauthorized},
			{name: "settings readable by guests", method: http.MethodGet, path: "/settings", token: "guest-token", wantStatus: http.StatusOK},
			{name: "unknown paths are 404 after auth", method: http.MethodGet, path: "/nowhere", token: "guest-token", wantStatus: http.StatusNotFound},
			{name: "wrong method", method: http.MethodPatch, path: "/gallery", token: "admin-token", wantStatus: http.StatusMethodNotAllowed},
			{name: "sessions only accepts POST", method: http.MethodGet, path: "/sessions", wantStatus: http.StatusMethodNotAllowed},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				recorder := f.do(tc.method, tc.path, tc.token, nil, nil)
				if recorder.Code != tc.wantStatus {
					t.Fatalf("status = %d, want %d", recorder.Code, tc.wantStatus)
				}
			})
		}
	})
}

func TestSettingsHandlers(t *testing.T) {
	t.Parallel()

	t.Run("accepts datetime-local event dates", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodPut, "/settings", "admin-token", strings.NewReader(`{"couple_names":"Ada & Ben","event_date":"2025-12-20T14:30","max_seats":100,"seats_per_table":10}`), nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
		}
		var body settingsResponse
		decodeBody(t, recorder, &body)
		if body.Settings.EventDate == nil || *body.Settings.EventDate != "2025-12-20T14:30:00Z" {
			t.Fatalf("event_date = %v", body.Settings.EventDate)
		}
	})

	t.Run("rejects unparseable event dates with field errors", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodPut, "/settings", "admin-token", strings.NewReader(`{"event_date":"next saturday"}`), nil)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", recorder.Code)
		}
		var body errorResponse
		decodeBody(t, recorder, &body)
		if body.ErrorCode != "VALIDATION_FAILED" || body.Errors["event_date"] == "" {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("map service sentinel errors to HTTP status codes", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			err        error
			wantStatus int
			wantCode   string
		}{
			{err: application.ErrUnauthorized, wantStatus: http.StatusForbidden, wantCode: "AUTH_FORBIDDEN"},
			{err: application.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
			{err: &application.PersistenceError{Op: "save settings", Err: errors.New("disk full")}, wantStatus: http.StatusInternalServerError, wantCode: "PERSISTENCE_FAILURE"},
			{err: errors.New("unexpected"), wantStatus: http.StatusInternalServerError},
		}

		for _, tc := range tests {
			t.Run(tc.err.Error(), func(t *testing.T) {
				f := newRouterFixture()
				f.settings.err = tc.err

				recorder := f.do(http.MethodGet, "/settings", "guest-token", nil, nil)
				if recorder.Code != tc.wantStatus {
					t.Fatalf("status = %d, want %d", recorder.Code, tc.wantStatus)
				}
				var body errorResponse
				decodeBody(t, recorder, &body)
				if body.ErrorCode != tc.wantCode {
					t.Fatalf("error_code = %q, want %q", body.ErrorCode, tc.wantCode)
				}
			})
		}
	})
}

func TestGuestHandlers(t *testing.T) {
	t.Parallel()

	t.Run("explicit null clears seat and food while absent keys are untouched", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodPut, "/guests/ABC123", "admin-token", strings.NewReader(`{"seat_number":null,"selected_food":null,"arrived":true}`), nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
		}
		params := f.guests.lastPatch
		if params.AccessCode != "ABC123" {
			t.Fatalf("access code = %q", params.AccessCode)
		}
		if !params.Patch.ClearSeat || params.Patch.SeatNumber != nil {
			t.Fatalf("expected seat clear, got %+v", params.Patch)
		}
		if params.Patch.SelectedFood == nil || *params.Patch.SelectedFood != "" {
			t.Fatalf("expected food clear, got %v", params.Patch.SelectedFood)
		}
		if params.Patch.SelectedDrink != nil || params.Patch.Name != nil {
			t.Fatalf("absent keys should stay nil: %+v", params.Patch)
		}
		if params.Patch.Arrived == nil || !*params.Patch.Arrived {
			t.Fatalf("arrived = %v", params.Patch.Arrived)
		}
	})

	t.Run("seat number sets the seat", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		f.do(http.MethodPut, "/guests/ABC123", "admin-token", strings.NewReader(`{"seat_number":12}`), nil)
		patch := f.guests.lastPatch.Patch
		if patch.ClearSeat || patch.SeatNumber == nil || *patch.SeatNumber != 12 {
			t.Fatalf("unexpected patch %+v", patch)
		}
	})

	t.Run("access codes download as csv when requested", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodPost, "/access-codes", "admin-token", strings.NewReader(`{"count":2}`), map[string]string{"Accept": "text/csv"})
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d", recorder.Code)
		}
		if ct := recorder.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Fatalf("content type = %q", ct)
		}
		if !strings.Contains(recorder.Header().Get("Content-Disposition"), "access-codes-") {
			t.Fatalf("content disposition = %q", recorder.Header().Get("Content-Disposition"))
		}
		if got, want := recorder.Body.String(), "Access Code\nAAAAAA\nBBBBBB\n"; got != want {
			t.Fatalf("body = %q, want %q", got, want)
		}
	})

	t.Run("access codes default to json", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodPost, "/access-codes", "admin-token", strings.NewReader(`{"count":1}`), nil)
		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d", recorder.Code)
		}
		var body accessCodesResponse
		decodeBody(t, recorder, &body)
		if len(body.Codes) != 1 || body.Codes[0] != "AAAAAA" {
			t.Fatalf("codes = %v", body.Codes)
		}
	})

	t.Run("guests cannot generate codes", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodPost, "/access-codes", "guest-token", strings.NewReader(`{"count":1}`), nil)
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("status = %d", recorder.Code)
		}
	})

	t.Run("cards pdf is not routed as a guest code", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()
		seat, table := 11, 2
		f.guests.guests = []application.GuestDetails{
			{Guest: application.Guest{AccessCode: "ABC123", Name: "Ada", SeatNumber: &seat}, TableNumber: &table},
		}

		recorder := f.do(http.MethodGet, "/guests/cards.pdf", "admin-token", nil, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
		}
		if ct := recorder.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Fatalf("content type = %q", ct)
		}
		if len(f.renderer.rendered) != 1 || f.renderer.rendered[0].TableNumber == nil || *f.renderer.rendered[0].TableNumber != 2 {
			t.Fatalf("rendered = %+v", f.renderer.rendered)
		}
	})

	t.Run("cards pdf without guests is not found", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		if recorder := f.do(http.MethodGet, "/guests/cards.pdf", "admin-token", nil, nil); recorder.Code != http.StatusNotFound {
			t.Fatalf("status = %d", recorder.Code)
		}
	})

	t.Run("import accepts multipart uploads", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		var buf bytes.Buffer
		form := multipart.NewWriter(&buf)
		part, err := form.CreateFormFile("file", "guests.csv")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		io.WriteString(part, "name,category\nAda,family\n")
		form.Close()

		recorder := f.do(http.MethodPost, "/guests/import", "admin-token", &buf, map[string]string{"Content-Type": form.FormDataContentType()})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
		}
		if f.guests.imported != "name,category\nAda,family\n" {
			t.Fatalf("imported = %q", f.guests.imported)
		}
	})

	t.Run("import accepts a raw csv body", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodPost, "/guests/import", "admin-token", strings.NewReader("name\nBen\n"), map[string]string{"Content-Type": "text/csv"})
		if recorder.Code != http.StatusCreated || f.guests.imported != "name\nBen\n" {
			t.Fatalf("status = %d, imported = %q", recorder.Code, f.guests.imported)
		}
	})
}

func TestContentHandlers(t *testing.T) {
	t.Parallel()

	t.Run("delete passes the path id", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodDelete, "/gallery/g-42", "admin-token", nil, nil)
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d", recorder.Code)
		}
		if len(f.content.removed) != 1 || f.content.removed[0] != "g-42" {
			t.Fatalf("removed = %v", f.content.removed)
		}
	})

	t.Run("drinks route selects the drink menu", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodGet, "/menu/drinks", "guest-token", nil, nil)
		if recorder.Code != http.StatusOK || f.content.menuKind != application.MenuDrink {
			t.Fatalf("status = %d, kind = %q", recorder.Code, f.content.menuKind)
		}
	})

	t.Run("validation errors carry field messages", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodPost, "/asoebi", "admin-token", strings.NewReader(`{"title":"Lace","price":0}`), nil)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", recorder.Code)
		}
		var body errorResponse
		decodeBody(t, recorder, &body)
		if body.Errors["price"] == "" {
			t.Fatalf("errors = %v", body.Errors)
		}
	})

	t.Run("positional removal resolves collection and index", func(t *testing.T) {
		t.Parallel()
		f := newRouterFixture()

		recorder := f.do(http.MethodDelete, "/collections/registry/2", "admin-token", nil, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d", recorder.Code)
		}
		var body map[string]string
		decodeBody(t, recorder, &body)
		if body["removed_id"] != "r3" {
			t.Fatalf("body = %v", body)
		}

		if recorder := f.do(http.MethodDelete, "/collections/unknown/0", "admin-token", nil, nil); recorder.Code != http.StatusNotFound {
			t.Fatalf("unknown collection status = %d", recorder.Code)
		}
	})
}
