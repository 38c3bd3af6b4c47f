package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext stores logger for FromContext.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request scoped logger, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithAccount tags the contextual logger with the authenticated account and
// session, so every later line of the request can be traced to both.
func WithAccount(ctx context.Context, accountID, sessionID string) context.Context {
	return WithContext(ctx, FromContext(ctx).With(
		slog.String("account_id", accountID),
		slog.String("session_id", sessionID),
	))
}
