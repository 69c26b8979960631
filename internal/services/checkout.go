package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/handoff"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/observability"
	"github.com/gitshopapp/storefront/internal/session"
	"github.com/gitshopapp/storefront/internal/stripe"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCheckoutNotFound reports a confirmation for a checkout with no waiting payload.
	ErrCheckoutNotFound = errors.New("checkout not found")
	// ErrCheckoutConfirmed reports a confirmation whose payload was already used.
	ErrCheckoutConfirmed = errors.New("checkout already confirmed")
	// ErrCheckoutRejected reports a paid checkout whose payload cannot become
	// an order. Retrying does not help; the payload is kept for support.
	ErrCheckoutRejected = errors.New("checkout payload rejected")
)

const offlinePaymentPrefix = "offline_"

type checkoutGateway interface {
	CreateCheckoutSession(ctx context.Context, params stripe.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, payload models.OrderPayload) (*models.Order, error)
}

type orderConfirmationNotifier interface {
	OrderConfirmed(ctx context.Context, order *models.Order)
}

type CheckoutService struct {
	catalog  *catalog.StorefrontConfig
	pricer   *catalog.Pricer
	gateway  checkoutGateway
	handoff  *handoff.Store
	orders   orderCreator
	notifier orderConfirmationNotifier
	baseURL  string
	logger   *slog.Logger
}

// NewCheckoutService wires checkout. A nil gateway enables offline checkout,
// which confirms orders without taking a payment.
func NewCheckoutService(cfg *catalog.StorefrontConfig, pricer *catalog.Pricer, gateway checkoutGateway, handoffStore *handoff.Store, orders orderCreator, notifier orderConfirmationNotifier, baseURL string, logger *slog.Logger) *CheckoutService {
	if pricer == nil {
		pricer = catalog.NewPricer()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &CheckoutService{
		catalog:  cfg,
		pricer:   pricer,
		gateway:  gateway,
		handoff:  handoffStore,
		orders:   orders,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

func (s *CheckoutService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Offline reports whether checkout runs without a payment gateway.
func (s *CheckoutService) Offline() bool {
	return s.gateway == nil
}

// Quote prices the cart against the catalog.
func (s *CheckoutService) Quote(cart []session.CartItem) (*catalog.Quote, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	lines := make([]catalog.CartLine, 0, len(cart))
	for _, item := range cart {
		lines = append(lines, catalog.CartLine{SKU: item.SKU, Quantity: item.Quantity})
	}
	quote, err := s.pricer.Quote(s.catalog, lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return quote, nil
}

// StartCheckout prices the cart and returns the URL the shopper is sent to for payment.
func (s *CheckoutService) StartCheckout(ctx context.Context, shopperID string, cart []session.CartItem) (string, error) {
	span := sentry.StartSpan(
		ctx,
		"service.checkout.start",
		sentry.WithOpName("service.checkout"),
		sentry.WithDescription("StartCheckout"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	quote, err := s.Quote(cart)
	if err != nil {
		return "", err
	}
	meter := observability.MeterFromContext(ctx)

	if s.gateway == nil {
		ref := offlinePaymentPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
		payload := offlinePayload(ref, shopperID, quote)
		if err := s.handoff.Put(ctx, ref, payload); err != nil {
			return "", fmt.Errorf("failed to hand off offline checkout: %w", err)
		}
		meter.Count("checkout.started", 1, sentry.WithAttributes(attribute.String("mode", "offline")))
		return "/checkout/success?session_id=" + url.QueryEscape(ref), nil
	}

	params := stripe.CheckoutSessionParams{
		Currency:        s.catalog.Shop.Currency,
		ShippingCents:   int64(quote.ShippingCents),
		ShippingCarrier: NormalizeCarrierName(s.catalog.Shop.Shipping.Carrier),
		ShopperID:       shopperID,
		SuccessURL:      s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       s.baseURL + "/cart",
	}
	for _, line := range quote.Lines {
		params.Lines = append(params.Lines, stripe.CheckoutLine{
			Name:           line.Product.Name,
			UnitPriceCents: int64(line.Product.UnitPriceCents),
			Quantity:       int64(line.Quantity),
		})
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		meter.Count("checkout.start.failed", 1)
		return "", err
	}
	meter.Count("checkout.started", 1, sentry.WithAttributes(attribute.String("mode", "stripe")))
	s.loggerFromContext(ctx).Info("checkout session created", "session_id", sess.ID, "shopper_id", shopperID, "total_cents", quote.TotalCents)
	return sess.URL, nil
}

// Confirmation is the outcome of completing a checkout. SaveErr is set when
// the order could not be persisted; Order then carries the unsaved status.
type Confirmation struct {
	Order   *models.Order
	SaveErr error
}

// CompleteCheckout takes the handed-off payload for ref and creates the order.
// The payload is read once; a failed save puts it back so the shopper can retry.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, ref string) (*Confirmation, error) {
	span := sentry.StartSpan(
		ctx,
		"service.checkout.complete",
		sentry.WithOpName("service.checkout"),
		sentry.WithDescription("CompleteCheckout"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := s.loggerFromContext(ctx)
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrCheckoutNotFound
	}

	if err := s.ensureHandoff(ctx, ref); err != nil {
		return nil, err
	}

	payload, err := s.handoff.Take(ctx, ref)
	if err != nil {
		switch {
		case errors.Is(err, handoff.ErrConsumed):
			return nil, ErrCheckoutConfirmed
		case errors.Is(err, handoff.ErrNotFound):
			return nil, ErrCheckoutNotFound
		case errors.Is(err, handoff.ErrUnreadable):
			logger.Error("checkout payload unreadable", "error", err, "ref", ref)
			return nil, fmt.Errorf("%w: %w", ErrCheckoutRejected, err)
		default:
			return nil, err
		}
	}

	order, err := s.orders.CreateOrder(ctx, payload)
	if err != nil {
		if order == nil {
			if restoreErr := s.handoff.Restore(ctx, ref, payload); restoreErr != nil {
				logger.Error("failed to restore rejected checkout payload", "error", restoreErr, "ref", ref)
			}
			logger.Error("checkout payload rejected", "error", err, "ref", ref, "payment_id", payload.PaymentID)
			return nil, fmt.Errorf("%w: %w", ErrCheckoutRejected, err)
		}
		if restoreErr := s.handoff.Restore(ctx, ref, payload); restoreErr != nil {
			logger.Error("failed to restore checkout payload after save failure", "error", restoreErr, "ref", ref)
		}
		logger.Warn("order not saved yet", "error", err, "payment_id", payload.PaymentID)
		return &Confirmation{Order: order, SaveErr: err}, nil
	}

	s.notifier.OrderConfirmed(ctx, order)
	return &Confirmation{Order: order}, nil
}

// ensureHandoff fetches the paid session from Stripe when the webhook has not
// delivered the payload yet.
func (s *CheckoutService) ensureHandoff(ctx context.Context, ref string) error {
	if s.gateway == nil || strings.HasPrefix(ref, offlinePaymentPrefix) {
		return nil
	}
	pending, err := s.handoff.Pending(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to check checkout handoff: %w", err)
	}
	if pending {
		return nil
	}

	sess, err := s.gateway.GetCheckoutSession(ctx, ref)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckoutNotFound, err)
	}
	payload, err := stripe.OrderPayload(sess)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckoutNotFound, err)
	}
	if err := s.handoff.Put(ctx, ref, payload); err != nil {
		if errors.Is(err, handoff.ErrConsumed) {
			return ErrCheckoutConfirmed
		}
		return err
	}
	return nil
}

func offlinePayload(ref, shopperID string, quote *catalog.Quote) models.OrderPayload {
	payload := models.OrderPayload{
		PaymentID:    ref,
		Amount:       catalog.CentsToDecimal(int64(quote.TotalCents)),
		CustomerInfo: models.CustomerInfo{UserID: shopperID},
	}
	for _, line := range quote.Lines {
		payload.Items = append(payload.Items, models.LineItem{
			Name:     line.Product.Name,
			Price:    catalog.CentsToDecimal(int64(line.Product.UnitPriceCents)),
			Quantity: line.Quantity,
		})
	}
	return payload
}
