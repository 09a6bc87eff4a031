package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// GuestLookup resolves stored guests by access code.
type GuestLookup interface {
	GuestByCode(code string) (Guest, bool)
}

// AuthService resolves access codes into sessions held in process memory.
type AuthService struct {
	guests         GuestLookup
	sessions       *SessionCache
	tokenGenerator func() string
	now            func() time.Time
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(guests GuestLookup, sessions *SessionCache, tokenGenerator func() string, now func() time.Time) *AuthService {
	return NewAuthServiceWithLogger(guests, sessions, tokenGenerator, now, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(guests GuestLookup, sessions *SessionCache, tokenGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if sessions == nil {
		sessions = NewSessionCache(0, 24*time.Hour)
	}
	if tokenGenerator == nil {
		tokenGenerator = NewSessionToken
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		guests:         guests,
		sessions:       sessions,
		tokenGenerator: tokenGenerator,
		now:            now,
		logger:         logger,
	}
}

// NewSessionToken returns 32 random bytes encoded as hex.
func NewSessionToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("session token entropy unavailable: %v", err))
	}
	return hex.EncodeToString(buf)
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// ResolveCode maps code to a principal: the exact administrator code, then an
// exact stored guest code. Anything else, including pending codes, is
// ErrInvalidCode.
func (s *AuthService) ResolveCode(code string) (Principal, error) {
	if code == AdminCode {
		return Principal{AccessCode: AdminCode, IsAdmin: true}, nil
	}
	if code == "" || s.guests == nil {
		return Principal{}, ErrInvalidCode
	}
	guest, ok := s.guests.GuestByCode(code)
	if !ok {
		return Principal{}, ErrInvalidCode
	}
	return Principal{AccessCode: guest.AccessCode}, nil
}

// Login resolves code and issues a new session.
func (s *AuthService) Login(ctx context.Context, code string) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Login")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "login rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(principalAttrs(session.Principal)...).InfoContext(ctx, "login succeeded")
	}()

	var principal Principal
	if principal, err = s.ResolveCode(code); err != nil {
		return
	}

	now := s.now()
	session = Session{
		Token:     s.tokenGenerator(),
		Principal: principal,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessions.TTL()),
	}
	if session.Token == "" {
		err = fmt.Errorf("session token generator returned an empty token")
		return
	}
	s.sessions.Put(session)
	return
}

// ValidateSession returns the live session for token.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("AuthService is nil")
	}

	session, ok := s.sessions.Get(token)
	if !ok {
		return Session{}, ErrUnauthenticated
	}
	if !s.now().Before(session.ExpiresAt) {
		s.sessions.Remove(token)
		s.loggerWith(ctx, "ValidateSession").DebugContext(ctx, "session expired")
		return Session{}, ErrUnauthenticated
	}
	return session, nil
}

// Logout revokes the session for token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	removed := s.sessions.Remove(token)
	s.loggerWith(ctx, "Logout").InfoContext(ctx, "session revoked", "found", removed)
	return nil
}
