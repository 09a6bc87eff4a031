package http

import (
	"context"
	"log/slog"

	"github.com/example/wedding-portal/internal/logging"
)

func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = logging.OrDefault(fallback)
	}

	pairs := []any{"handler", handlerName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if principal, ok := PrincipalFromContext(ctx); ok {
		if principal.IsAdmin {
			pairs = append(pairs, "principal_role", "admin")
		} else {
			pairs = append(pairs, "principal_role", "guest", "access_code", principal.AccessCode)
		}
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}
