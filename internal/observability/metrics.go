// Package observability carries Sentry meters and traced HTTP clients.
package observability

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
)

type meterKey struct{}

// WithMeter stores meter, bound to ctx, for MeterFromContext. A nil meter
// stores a fresh one.
func WithMeter(ctx context.Context, meter sentry.Meter) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if meter == nil {
		meter = sentry.NewMeter(ctx)
	}
	return context.WithValue(ctx, meterKey{}, meter.WithCtx(ctx))
}

// MeterFromContext returns the request meter, so counters pick up the
// request and shopper attributes, or a fresh meter outside a request.
func MeterFromContext(ctx context.Context) sentry.Meter {
	if ctx == nil {
		ctx = context.Background()
	}
	meter, ok := ctx.Value(meterKey{}).(sentry.Meter)
	if !ok || meter == nil {
		meter = sentry.NewMeter(ctx)
	}
	return meter.WithCtx(ctx)
}

// Count increments name by one on the request meter.
func Count(ctx context.Context, name string, attrs ...attribute.Builder) {
	meter := MeterFromContext(ctx)
	if len(attrs) == 0 {
		meter.Count(name, 1)
		return
	}
	meter.Count(name, 1, sentry.WithAttributes(attrs...))
}
