package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/wedding-portal/internal/config"
	"github.com/example/wedding-portal/internal/logging"
	"github.com/example/wedding-portal/internal/persistence/sqlite"
)

type portalClient struct {
	t       *testing.T
	handler http.Handler
}

func (c portalClient) do(method, path, token, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	c.handler.ServeHTTP(recorder, req)
	return recorder
}

func (c portalClient) login(code string) string {
	c.t.Helper()
	recorder := c.do(http.MethodPost, "/sessions", "", `{"code":"`+code+`"}`)
	if recorder.Code != http.StatusCreated {
		c.t.Fatalf("login %q: status = %d, body = %s", code, recorder.Code, recorder.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		c.t.Fatalf("decode login: %v", err)
	}
	return body.Token
}

func newPortal(t *testing.T, dbPath string) portalClient {
	t.Helper()

	cfg, err := config.LoadFrom(map[string]string{config.EnvPrefix + "SQLITE_DSN": dbPath})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	handler, err := buildHandler(context.Background(), cfg, storage, logging.Discard())
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	return portalClient{t: t, handler: handler}
}

func TestPortalEndToEnd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "portal.db")
	portal := newPortal(t, dbPath)

	if recorder := portal.do(http.MethodGet, "/healthz", "", ""); recorder.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", recorder.Code)
	}

	admin := portal.login("ADMIN")

	recorder := portal.do(http.MethodPost, "/guests", admin, `{"name":"Ada Obi","category":"family","seat_number":13}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create guest: status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var created struct {
		Guest struct {
			AccessCode string `json:"access_code"`
		} `json:"guest"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode guest: %v", err)
	}
	code := created.Guest.AccessCode
	if len(code) != 5 {
		t.Fatalf("access code = %q", code)
	}

	if recorder := portal.do(http.MethodPost, "/guests", admin, `{"name":"Ben","seat_number":13}`); recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate seat status = %d", recorder.Code)
	}

	guest := portal.login(code)
	recorder = portal.do(http.MethodGet, "/me", guest, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("me: status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var profile struct {
		Guest struct {
			Name        string `json:"name"`
			TableNumber *int   `json:"table_number"`
		} `json:"guest"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Guest.Name != "Ada Obi" || profile.Guest.TableNumber == nil || *profile.Guest.TableNumber != 2 {
		t.Fatalf("unexpected profile %+v", profile.Guest)
	}

	if recorder := portal.do(http.MethodGet, "/guests", guest, ""); recorder.Code != http.StatusForbidden {
		t.Fatalf("guest listing status = %d", recorder.Code)
	}
	if recorder := portal.do(http.MethodPost, "/me/arrival", guest, ""); recorder.Code != http.StatusOK {
		t.Fatalf("arrival status = %d", recorder.Code)
	}

	if recorder := portal.do(http.MethodPost, "/menu/drinks", admin, `{"name":"Zobo","category":"non-alcoholic"}`); recorder.Code != http.StatusCreated {
		t.Fatalf("menu status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	if recorder := portal.do(http.MethodDelete, "/sessions/current", guest, ""); recorder.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", recorder.Code)
	}
	if recorder := portal.do(http.MethodGet, "/me", guest, ""); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("revoked session status = %d", recorder.Code)
	}

	// A fresh process over the same database sees the stored guest and menu.
	restarted := newPortal(t, dbPath)
	restartedGuest := restarted.login(code)
	recorder = restarted.do(http.MethodGet, "/menu/drinks", restartedGuest, "")
	if recorder.Code != http.StatusOK || !strings.Contains(recorder.Body.String(), "Zobo") {
		t.Fatalf("menu after restart: status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	recorder = restarted.do(http.MethodGet, "/me", restartedGuest, "")
	if !strings.Contains(recorder.Body.String(), `"arrived":true`) {
		t.Fatalf("arrival not persisted: %s", recorder.Body.String())
	}
}
