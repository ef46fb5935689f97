package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext stores a logger in the context so downstream code logs with the
// request's accumulated attributes instead of the bare process logger.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the context logger, falling back to slog.Default when
// none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithRequestID derives a context whose logger carries the request id.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("req_id", reqID))
}

// Session returns the context logger bound to a (user, device) pair. Session
// lifecycle code logs against this so every line carries both ids.
func Session(ctx context.Context, userID, deviceID string) *slog.Logger {
	return FromContext(ctx).With("user_id", userID, "device_id", deviceID)
}
