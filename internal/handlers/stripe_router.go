package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/observability"
)

type stripeEventHandler interface {
	HandleCheckoutSessionCompleted(ctx context.Context, event *stripeapi.Event) error
	HandleCheckoutSessionExpired(ctx context.Context, event *stripeapi.Event) error
}

type stripeEventFunc func(context.Context, *stripeapi.Event) error

// StripeEventRouter dispatches verified Stripe events by type. Types without
// a route are acknowledged and ignored.
type StripeEventRouter struct {
	routes map[stripeapi.EventType]stripeEventFunc
	logger *slog.Logger
}

func NewStripeEventRouter(service stripeEventHandler, logger *slog.Logger) *StripeEventRouter {
	return &StripeEventRouter{
		routes: map[stripeapi.EventType]stripeEventFunc{
			"checkout.session.completed":               service.HandleCheckoutSessionCompleted,
			"checkout.session.async_payment_succeeded": service.HandleCheckoutSessionCompleted,
			"checkout.session.expired":                 service.HandleCheckoutSessionExpired,
		},
		logger: logger,
	}
}

func (r *StripeEventRouter) Handle(ctx context.Context, event *stripeapi.Event) (err error) {
	span := sentry.StartSpan(
		ctx,
		"handler.stripe_router.handle",
		sentry.WithOpName("handler.stripe_router"),
		sentry.WithDescription("StripeEventRouter.Handle"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	ctx = span.Context()
	defer func() {
		if err != nil {
			span.Status = sentry.SpanStatusInternalError
		} else {
			span.Status = sentry.SpanStatusOK
		}
		span.Finish()
	}()

	observability.Count(ctx, "webhook.router.received", attribute.String("webhook.provider", "stripe"))
	if event == nil || event.Data == nil {
		observability.Count(ctx, "webhook.router.failed", attribute.String("reason", "malformed_event"))
		return errors.New("stripe event has no data")
	}

	eventType := attribute.String("webhook.event_type", string(event.Type))
	handle, ok := r.routes[event.Type]
	if !ok {
		logging.FromContext(ctx, r.logger).Info("ignoring Stripe event", "type", event.Type, "event_id", event.ID)
		observability.Count(ctx, "webhook.router.unhandled", eventType)
		return nil
	}

	if err := handle(ctx, event); err != nil {
		observability.Count(ctx, "webhook.router.failed", eventType, attribute.String("reason", "handler_error"))
		return fmt.Errorf("%s: %w", event.Type, err)
	}
	observability.Count(ctx, "webhook.router.processed", eventType)
	return nil
}
