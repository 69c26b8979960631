package logging

import (
	"context"
	"io"
	"log/slog"
)

type loggerKey struct{}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// WithLogger stores logger in ctx for FromContext. A nil logger stores a
// discarding one.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = discard
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request logger, then fallback, then a discarding logger.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	if fallback != nil {
		return fallback
	}
	return discard
}

// With adds args to the request logger carried by ctx so that every later
// record in the request includes them, e.g. the shopper id once the session
// is known.
func With(ctx context.Context, fallback *slog.Logger, args ...any) context.Context {
	if len(args) == 0 {
		return WithLogger(ctx, FromContext(ctx, fallback))
	}
	return WithLogger(ctx, FromContext(ctx, fallback).With(args...))
}
