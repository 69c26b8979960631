package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/handoff"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/stripe"
)

const webhookDedupTTL = 24 * time.Hour

// StripeService handles Stripe webhook events for checkout.
type StripeService struct {
	gateway checkoutGateway
	handoff *handoff.Store
	cache   cache.Provider
	logger  *slog.Logger
}

func NewStripeService(gateway checkoutGateway, handoffStore *handoff.Store, cacheProvider cache.Provider, logger *slog.Logger) *StripeService {
	return &StripeService{
		gateway: gateway,
		handoff: handoffStore,
		cache:   cacheProvider,
		logger:  logger,
	}
}

func (s *StripeService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// FirstDelivery records the event ID and reports whether it was seen for the first time.
func (s *StripeService) FirstDelivery(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return true, nil
	}
	first, err := s.cache.SetNX(ctx, cache.WebhookKey("stripe", eventID), "1", webhookDedupTTL)
	if err != nil {
		return false, fmt.Errorf("failed to record webhook delivery: %w", err)
	}
	return first, nil
}

// ForgetDelivery clears the delivery record so a redelivery of a failed event is processed.
func (s *StripeService) ForgetDelivery(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	return s.cache.Delete(ctx, cache.WebhookKey("stripe", eventID))
}

// HandleCheckoutSessionCompleted hands the paid order payload to confirmation.
func (s *StripeService) HandleCheckoutSessionCompleted(ctx context.Context, event *stripeapi.Event) error {
	logger := s.loggerFromContext(ctx)

	sess, err := stripe.DecodeCheckoutSession(event)
	if err != nil {
		return err
	}

	// Completed events omit line items, so read the full session back.
	if s.gateway != nil {
		full, err := s.gateway.GetCheckoutSession(ctx, sess.ID)
		if err != nil {
			return err
		}
		if full.ShippingDetails == nil {
			full.ShippingDetails = sess.ShippingDetails
		}
		sess = full
	}

	payload, err := stripe.OrderPayload(sess)
	if err != nil {
		if errors.Is(err, stripe.ErrNotPaid) {
			logger.Info("ignoring unpaid checkout session", "session_id", sess.ID)
			return nil
		}
		return err
	}

	if err := s.handoff.Put(ctx, sess.ID, payload); err != nil {
		if errors.Is(err, handoff.ErrConsumed) {
			logger.Info("checkout already confirmed", "session_id", sess.ID)
			return nil
		}
		return fmt.Errorf("failed to hand off checkout: %w", err)
	}

	logger.Info("checkout handed off", "session_id", sess.ID, "payment_id", payload.PaymentID)
	return nil
}

// HandleCheckoutSessionExpired logs abandoned sessions; there is no order to update.
func (s *StripeService) HandleCheckoutSessionExpired(ctx context.Context, event *stripeapi.Event) error {
	sess, err := stripe.DecodeCheckoutSession(event)
	if err != nil {
		return err
	}
	s.loggerFromContext(ctx).Info("checkout session expired", "session_id", sess.ID, "shopper_id", sess.ClientReferenceID)
	return nil
}
