package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/wedding-portal/internal/application"
)

type authService interface {
	Login(ctx context.Context, code string) (application.Session, error)
	Logout(ctx context.Context, token string) error
}

// SessionHandler logs guests and administrators in and out.
type SessionHandler struct {
	service      authService
	secureCookie bool
	responder    responder
	logger       *slog.Logger
}

// NewSessionHandler constructs a SessionHandler. secureCookie marks the
// session cookie Secure and should be set when served over HTTPS.
func NewSessionHandler(service authService, secureCookie bool, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: service, secureCookie: secureCookie, responder: newResponder(logger), logger: logger}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

// CreateSession handles POST /sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateSession", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode session request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateSession")
	session, err := h.service.Login(r.Context(), req.Code)
	if err != nil {
		logger.WarnContext(r.Context(), "login rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	setSessionCookie(w, session.Token, session.ExpiresAt, h.secureCookie)
	w.Header().Set("X-Session-Token", session.Token)

	logger.With("is_admin", session.Principal.IsAdmin).InfoContext(r.Context(), "session created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		Principal: toPrincipalDTO(session.Principal),
	})
}

// DeleteCurrentSession handles DELETE /sessions/current.
func (h *SessionHandler) DeleteCurrentSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token, ok := SessionTokenFromContext(r.Context())
	if !ok {
		token = extractTokenFromRequest(r)
	}
	if token == "" {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	logger := h.log(r.Context(), "DeleteCurrentSession")
	if err := h.service.Logout(r.Context(), token); err != nil {
		logger.ErrorContext(r.Context(), "failed to revoke session", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	clearSessionCookie(w, h.secureCookie)
	logger.InfoContext(r.Context(), "session revoked")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type loginRequest struct {
	Code string `json:"code"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	Principal principalDTO `json:"principal"`
}

type principalDTO struct {
	AccessCode string `json:"access_code,omitempty"`
	IsAdmin    bool   `json:"is_admin"`
}

func toPrincipalDTO(p application.Principal) principalDTO {
	if p.IsAdmin {
		return principalDTO{IsAdmin: true}
	}
	return principalDTO{AccessCode: p.AccessCode}
}
