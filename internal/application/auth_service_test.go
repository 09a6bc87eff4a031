package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/wedding-portal/internal/logging"
)

type guestLookupStub map[string]Guest

func (s guestLookupStub) GuestByCode(code string) (Guest, bool) {
	g, ok := s[code]
	return g, ok
}

func fixedTokens(tokens ...string) func() string {
	return func() string {
		if len(tokens) == 0 {
			return "fallback"
		}
		token := tokens[0]
		tokens = tokens[1:]
		return token
	}
}

func TestAuthService_ResolveCode(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(guestLookupStub{"AB12C": {AccessCode: "AB12C", Name: "Ada"}}, nil, nil, nil)

	tests := []struct {
		name    string
		code    string
		want    Principal
		wantErr error
	}{
		{name: "administrator code", code: "ADMIN", want: Principal{AccessCode: AdminCode, IsAdmin: true}},
		{name: "stored guest", code: "AB12C", want: Principal{AccessCode: "AB12C"}},
		{name: "lower case admin is not admin", code: "admin", wantErr: ErrInvalidCode},
		{name: "lower case guest code is not matched", code: "ab12c", wantErr: ErrInvalidCode},
		{name: "unknown code", code: "ZZZZZ", wantErr: ErrInvalidCode},
		{name: "empty code", code: "", wantErr: ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveCode(tt.code)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveCode returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := now
	sessions := NewSessionCache(16, time.Hour)
	svc := NewAuthServiceWithLogger(
		guestLookupStub{"AB12C": {AccessCode: "AB12C"}},
		sessions,
		fixedTokens("token-admin", "token-guest"),
		func() time.Time { return clock },
		logging.Discard(),
	)

	admin, err := svc.Login(context.Background(), AdminCode)
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if admin.Token != "token-admin" || !admin.Principal.IsAdmin {
		t.Fatalf("unexpected admin session %+v", admin)
	}
	if !admin.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry one hour out, got %v", admin.ExpiresAt)
	}

	guest, err := svc.Login(context.Background(), "AB12C")
	if err != nil {
		t.Fatalf("guest login failed: %v", err)
	}
	if guest.Principal.IsAdmin || guest.Principal.AccessCode != "AB12C" {
		t.Fatalf("unexpected guest principal %+v", guest.Principal)
	}

	got, err := svc.ValidateSession(context.Background(), "token-guest")
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if got.Principal != guest.Principal {
		t.Fatalf("expected %+v, got %+v", guest.Principal, got.Principal)
	}

	if _, err := svc.ValidateSession(context.Background(), "unknown"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for unknown token, got %v", err)
	}
	if _, err := svc.ValidateSession(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty token, got %v", err)
	}

	clock = now.Add(time.Hour)
	if _, err := svc.ValidateSession(context.Background(), "token-admin"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
	if sessions.Len() != 1 {
		t.Fatalf("expected expired session to be evicted, %d remain", sessions.Len())
	}
}

func TestAuthService_LoginRejectsInvalidCode(t *testing.T) {
	t.Parallel()

	sessions := NewSessionCache(4, time.Hour)
	svc := NewAuthService(guestLookupStub{}, sessions, nil, nil)

	if _, err := svc.Login(context.Background(), "NOPE1"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if sessions.Len() != 0 {
		t.Fatal("expected no session to be issued")
	}
}

func TestAuthService_PendingCodeBecomesValidOnceClaimed(t *testing.T) {
	t.Parallel()

	repos := newStoreRepos()
	store := newLoadedStore(t, repos)
	codes, err := store.ReservePendingCodes(1, sequentialDrawer())
	if err != nil {
		t.Fatalf("ReservePendingCodes returned error: %v", err)
	}
	svc := NewAuthService(store, nil, nil, nil)

	if _, err := svc.Login(context.Background(), codes[0]); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected pending code to be rejected, got %v", err)
	}

	if _, err := store.ClaimPendingCode(context.Background(), Guest{AccessCode: codes[0], Name: "Ada"}); err != nil {
		t.Fatalf("ClaimPendingCode returned error: %v", err)
	}
	session, err := svc.Login(context.Background(), codes[0])
	if err != nil {
		t.Fatalf("expected claimed code to log in, got %v", err)
	}
	if session.Principal.AccessCode != codes[0] {
		t.Fatalf("unexpected principal %+v", session.Principal)
	}
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(guestLookupStub{}, nil, fixedTokens("token-1"), nil)
	session, err := svc.Login(context.Background(), AdminCode)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.ValidateSession(context.Background(), session.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected revoked session to be rejected, got %v", err)
	}
	if err := svc.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("expected unknown token logout to succeed, got %v", err)
	}
}

func TestNewSessionToken(t *testing.T) {
	t.Parallel()

	a, b := NewSessionToken(), NewSessionToken()
	if len(a) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(a))
	}
	if a == b {
		t.Fatal("expected distinct tokens")
	}
}
