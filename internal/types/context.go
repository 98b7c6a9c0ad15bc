package types

import (
	"context"
	"log/slog"
)

// Context Keys
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
	clientKey    contextKey = "client_id"
)

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithLogger stores a request-scoped logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext retrieves the request-scoped logger, falling back to
// fallback when none has been stored.
func LoggerFromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return fallback
}

// WithClientID stores the identifier used for per-client rate limiting.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientKey, id)
}

// GetClientID retrieves the rate limiting client identifier.
func GetClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientKey).(string)
	return id
}
