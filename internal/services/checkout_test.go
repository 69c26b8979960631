package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/crypto"
	"github.com/gitshopapp/storefront/internal/docstore"
	"github.com/gitshopapp/storefront/internal/handoff"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/orders"
	"github.com/gitshopapp/storefront/internal/session"
	"github.com/gitshopapp/storefront/internal/stripe"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeGateway struct {
	mu       sync.Mutex
	created  []stripe.CheckoutSessionParams
	sessions map[string]*stripe.CheckoutSession
	gets     int
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, params stripe.CheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, params)
	return &stripeapi.CheckoutSession{ID: "cs_test_new", URL: "https://checkout.stripe.com/c/pay/cs_test_new"}, nil
}

func (g *fakeGateway) GetCheckoutSession(_ context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gets++
	sess, ok := g.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such checkout session")
	}
	return sess, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []*models.Order
	cancelled []*models.Order
}

func (n *recordingNotifier) OrderConfirmed(_ context.Context, order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, order)
}

func (n *recordingNotifier) OrderCancelled(_ context.Context, order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, order)
}

type failingCreator struct {
	calls int
}

func (c *failingCreator) CreateOrder(_ context.Context, payload models.OrderPayload) (*models.Order, error) {
	c.calls++
	return &models.Order{PaymentID: payload.PaymentID, OrderID: orders.DeriveOrderID(payload.PaymentID), Status: models.StatusUnsaved},
		errors.New("transient write failure: store unavailable")
}

type rejectingCreator struct {
	calls int
}

func (c *rejectingCreator) CreateOrder(context.Context, models.OrderPayload) (*models.Order, error) {
	c.calls++
	return nil, errors.New("validation failed: paymentId is required")
}

func paidSession(id, shopperID string) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{CheckoutSession: stripeapi.CheckoutSession{
		ID:                id,
		PaymentStatus:     stripeapi.CheckoutSessionPaymentStatusPaid,
		AmountTotal:       3000,
		ClientReferenceID: shopperID,
		PaymentIntent:     &stripeapi.PaymentIntent{ID: "pi_test_ab12cd34ef56"},
		CustomerDetails:   &stripeapi.CheckoutSessionCustomerDetails{Email: "ada@example.com", Name: "Ada"},
		LineItems: &stripeapi.LineItemList{Data: []*stripeapi.LineItem{
			{Description: "Logo T-Shirt", Quantity: 1, AmountSubtotal: 2500, Price: &stripeapi.Price{UnitAmount: 2500}},
		}},
	}}
}

type checkoutFixture struct {
	checkout *CheckoutService
	webhooks *StripeService
	manager  *orders.Manager
	handoff  *handoff.Store
	notifier *recordingNotifier
}

func newCheckoutFixture(t *testing.T, gateway checkoutGateway, creator orderCreator) *checkoutFixture {
	t.Helper()

	cfg, err := catalog.Load("")
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	provider, err := cache.NewMemoryProvider(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sealer, err := crypto.NewSealer(strings.Repeat("k", 32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	handoffStore, err := handoff.NewStore(provider, sealer, time.Minute, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	manager := orders.NewManager(docstore.NewMemoryStore(), discardLogger())
	if creator == nil {
		creator = manager
	}
	notifier := &recordingNotifier{}
	return &checkoutFixture{
		checkout: NewCheckoutService(cfg, nil, gateway, handoffStore, creator, notifier, "https://shop.example", discardLogger()),
		webhooks: NewStripeService(gateway, handoffStore, provider, discardLogger()),
		manager:  manager,
		handoff:  handoffStore,
		notifier: notifier,
	}
}

func TestCheckoutService_OfflineCheckoutConfirmsOnce(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t, nil, nil)
	ctx := context.Background()
	cart := []session.CartItem{{SKU: "TSHIRT_V1", Quantity: 2}, {SKU: "MUG_V1", Quantity: 1}}

	redirect, err := f.checkout.StartCheckout(ctx, "shopper-1", cart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const prefix = "/checkout/success?session_id="
	if !strings.HasPrefix(redirect, prefix) {
		t.Fatalf("unexpected redirect %q", redirect)
	}
	ref := strings.TrimPrefix(redirect, prefix)

	confirmation, err := f.checkout.CompleteCheckout(ctx, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order := confirmation.Order
	if confirmation.SaveErr != nil || order.Status != models.StatusSuccess || order.ID == "" {
		t.Fatalf("unexpected confirmation: %+v", confirmation)
	}
	if order.Amount.StringFixed(2) != "73.00" {
		t.Fatalf("amount = %s, want 73.00", order.Amount)
	}
	if order.CustomerInfo.UserID != "shopper-1" || len(order.Items) != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if len(f.notifier.confirmed) != 1 {
		t.Fatalf("expected one confirmation notice, got %d", len(f.notifier.confirmed))
	}

	if _, err := f.checkout.CompleteCheckout(ctx, ref); !errors.Is(err, ErrCheckoutConfirmed) {
		t.Fatalf("expected ErrCheckoutConfirmed on refresh, got %v", err)
	}

	listed, err := f.manager.ListOrders(ctx, "shopper-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected exactly one persisted order, got %d", len(listed))
	}
}

func TestCheckoutService_StripeCheckoutWithoutWebhook(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{sessions: map[string]*stripe.CheckoutSession{
		"cs_test_paid": paidSession("cs_test_paid", "shopper-2"),
	}}
	f := newCheckoutFixture(t, gateway, nil)
	ctx := context.Background()

	redirect, err := f.checkout.StartCheckout(ctx, "shopper-2", []session.CartItem{{SKU: "TSHIRT_V1", Quantity: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if redirect != "https://checkout.stripe.com/c/pay/cs_test_new" {
		t.Fatalf("unexpected redirect %q", redirect)
	}
	params := gateway.created[0]
	if params.ShopperID != "shopper-2" || params.ShippingCents != 500 || params.ShippingCarrier != "USPS" || len(params.Lines) != 1 {
		t.Fatalf("unexpected session params: %+v", params)
	}
	if !strings.HasPrefix(params.SuccessURL, "https://shop.example/checkout/success") {
		t.Fatalf("unexpected success url %q", params.SuccessURL)
	}

	confirmation, err := f.checkout.CompleteCheckout(ctx, "cs_test_paid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmation.Order.PaymentID != "pi_test_ab12cd34ef56" || confirmation.Order.OrderID != "ORD-34ef56" {
		t.Fatalf("unexpected order: %+v", confirmation.Order)
	}

	if _, err := f.checkout.CompleteCheckout(ctx, "cs_test_paid"); !errors.Is(err, ErrCheckoutConfirmed) {
		t.Fatalf("expected ErrCheckoutConfirmed, got %v", err)
	}
	if _, err := f.checkout.CompleteCheckout(ctx, "cs_test_unknown"); !errors.Is(err, ErrCheckoutNotFound) {
		t.Fatalf("expected ErrCheckoutNotFound, got %v", err)
	}
}

func TestCheckoutService_SaveFailureCanBeRetried(t *testing.T) {
	t.Parallel()

	creator := &failingCreator{}
	f := newCheckoutFixture(t, nil, creator)
	ctx := context.Background()

	redirect, err := f.checkout.StartCheckout(ctx, "shopper-3", []session.CartItem{{SKU: "MUG_V1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := strings.TrimPrefix(redirect, "/checkout/success?session_id=")

	for attempt := 1; attempt <= 2; attempt++ {
		confirmation, err := f.checkout.CompleteCheckout(ctx, ref)
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", attempt, err)
		}
		if confirmation.SaveErr == nil || confirmation.Order.Status != models.StatusUnsaved {
			t.Fatalf("attempt %d: expected unsaved order, got %+v", attempt, confirmation)
		}
	}
	if creator.calls != 2 {
		t.Fatalf("expected two create attempts, got %d", creator.calls)
	}
	if len(f.notifier.confirmed) != 0 {
		t.Fatal("expected no confirmation notice for unsaved order")
	}
}

func TestCheckoutService_RejectedPayloadIsKeptAndNotReportedConfirmed(t *testing.T) {
	t.Parallel()

	creator := &rejectingCreator{}
	f := newCheckoutFixture(t, nil, creator)
	ctx := context.Background()

	redirect, err := f.checkout.StartCheckout(ctx, "shopper-4", []session.CartItem{{SKU: "MUG_V1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := strings.TrimPrefix(redirect, "/checkout/success?session_id=")

	for attempt := 1; attempt <= 2; attempt++ {
		_, err := f.checkout.CompleteCheckout(ctx, ref)
		if !errors.Is(err, ErrCheckoutRejected) {
			t.Fatalf("attempt %d: expected ErrCheckoutRejected, got %v", attempt, err)
		}
		if errors.Is(err, ErrCheckoutConfirmed) {
			t.Fatalf("attempt %d: rejected checkout reported as confirmed", attempt)
		}
	}
	pending, err := f.handoff.Pending(ctx, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pending {
		t.Fatal("expected the paid payload to be kept")
	}
	if creator.calls != 2 {
		t.Fatalf("expected two create attempts, got %d", creator.calls)
	}
}

func TestCheckoutService_QuoteRejectsBadCarts(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t, nil, nil)

	tests := []struct {
		name    string
		cart    []session.CartItem
		wantErr error
	}{
		{name: "empty cart", cart: nil, wantErr: ErrEmptyCart},
		{name: "unknown sku", cart: []session.CartItem{{SKU: "NOPE", Quantity: 1}}, wantErr: ErrInvalidInput},
		{name: "inactive product", cart: []session.CartItem{{SKU: "STICKERS_V1", Quantity: 1}}, wantErr: ErrInvalidInput},
		{name: "quantity over limit", cart: []session.CartItem{{SKU: "TSHIRT_V1", Quantity: 6}}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := f.checkout.Quote(tt.cart); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Quote() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStripeService_CheckoutCompletedHandsOffPayload(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{sessions: map[string]*stripe.CheckoutSession{
		"cs_test_hook": paidSession("cs_test_hook", "shopper-4"),
	}}
	f := newCheckoutFixture(t, gateway, nil)
	ctx := context.Background()

	event := &stripeapi.Event{
		ID:   "evt_1",
		Type: "checkout.session.completed",
		Data: &stripeapi.EventData{Raw: json.RawMessage(`{"id":"cs_test_hook","object":"checkout.session","payment_status":"paid"}`)},
	}

	first, err := f.webhooks.FirstDelivery(ctx, event.ID)
	if err != nil || !first {
		t.Fatalf("FirstDelivery() = %v, %v", first, err)
	}
	if again, _ := f.webhooks.FirstDelivery(ctx, event.ID); again {
		t.Fatal("expected redelivery to be detected")
	}
	if err := f.webhooks.ForgetDelivery(ctx, event.ID); err != nil {
		t.Fatalf("ForgetDelivery() error = %v", err)
	}
	if retry, _ := f.webhooks.FirstDelivery(ctx, event.ID); !retry {
		t.Fatal("expected a forgotten delivery to be processed again")
	}

	if err := f.webhooks.HandleCheckoutSessionCompleted(ctx, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending, err := f.handoff.Pending(ctx, "cs_test_hook")
	if err != nil || !pending {
		t.Fatalf("Pending() = %v, %v", pending, err)
	}

	confirmation, err := f.checkout.CompleteCheckout(ctx, "cs_test_hook")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmation.Order.CustomerInfo.Email != "ada@example.com" {
		t.Fatalf("unexpected order: %+v", confirmation.Order)
	}
	if gateway.gets != 1 {
		t.Fatalf("expected only the webhook to read the session, got %d reads", gateway.gets)
	}

	// A late webhook after confirmation must not queue the payload again.
	if err := f.webhooks.HandleCheckoutSessionCompleted(ctx, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pending, _ := f.handoff.Pending(ctx, "cs_test_hook"); pending {
		t.Fatal("expected consumed checkout to stay consumed")
	}
}
