package handlers

import (
	"net/http"

	"github.com/getsentry/sentry-go/attribute"

	"github.com/gitshopapp/storefront/internal/observability"
	stripewebhook "github.com/gitshopapp/storefront/internal/stripe"
)

// StripeWebhook verifies and dispatches a Stripe event. Each event id is
// processed once; a failed delivery is forgotten so Stripe's retry runs again.
func (h *Handlers) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.config.StripeWebhookSecret == "" {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	event, err := stripewebhook.ReadWebhookEvent(r, h.config.StripeWebhookSecret)
	if err != nil || event == nil || event.ID == "" {
		h.loggerFromContext(ctx).Warn("rejected Stripe webhook", "error", err)
		observability.Count(ctx, "webhook.rejected", attribute.String("webhook.provider", "stripe"))
		http.Error(w, "Invalid webhook", http.StatusBadRequest)
		return
	}
	logger := h.loggerFromContext(ctx).With("event_id", event.ID, "event_type", event.Type)

	first, err := h.stripeService.FirstDelivery(ctx, event.ID)
	switch {
	case err != nil:
		logger.Error("failed to record webhook delivery", "error", err)
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	case !first:
		logger.Info("duplicate webhook delivery")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.stripeRouter.Handle(ctx, event); err != nil {
		logger.Error("failed to process Stripe webhook", "error", err)
		if err := h.stripeService.ForgetDelivery(ctx, event.ID); err != nil {
			logger.Error("failed to forget webhook delivery", "error", err)
		}
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
