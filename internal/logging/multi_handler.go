package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// MultiHandler sends each record to every handler that accepts its level.
// Nil handlers are skipped; with none left records are discarded.
func MultiHandler(handlers ...slog.Handler) slog.Handler {
	var fan fanout
	for _, handler := range handlers {
		if handler != nil {
			fan = append(fan, handler)
		}
	}
	switch len(fan) {
	case 0:
		return slog.NewTextHandler(io.Discard, nil)
	case 1:
		return fan[0]
	}
	return fan
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range f {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range f {
		if handler.Enabled(ctx, record.Level) {
			// Handlers may retain the record, so each gets its own copy.
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) derive(fn func(slog.Handler) slog.Handler) fanout {
	next := make(fanout, len(f))
	for i, handler := range f {
		next[i] = fn(handler)
	}
	return next
}
