package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/wedding-portal/internal/logging"
)

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = logging.OrDefault(base)
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	pairs = append(pairs, attrs...)
	return logger.With(pairs...)
}

// principalAttrs describes the caller without logging the raw access code of
// administrators.
func principalAttrs(principal Principal) []any {
	if principal.IsAdmin {
		return []any{"principal_role", "admin"}
	}
	return []any{"principal_role", "guest", "access_code", principal.AccessCode}
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCodeSpaceExhausted):
		return "code_space_exhausted"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var pErr *PersistenceError
	if errors.As(err, &pErr) {
		return "persistence"
	}
	return "unexpected"
}
