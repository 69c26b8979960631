package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gitshopapp/storefront/internal/docstore"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/orders"
)

func newOrderFixture(t *testing.T) (*OrderService, *orders.Manager, *recordingNotifier, *models.Order) {
	t.Helper()

	manager := orders.NewManager(docstore.NewMemoryStore(), discardLogger())
	order, err := manager.CreateOrder(context.Background(), models.OrderPayload{
		PaymentID:    "pay_abcdef123456",
		Amount:       decimal.NewFromInt(500),
		Items:        []models.LineItem{{Name: "Shirt", Price: decimal.NewFromInt(500), Quantity: 1}},
		CustomerInfo: models.CustomerInfo{UserID: "shopper-1", Email: "ada@example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notifier := &recordingNotifier{}
	return NewOrderService(manager, notifier, discardLogger()), manager, notifier, order
}

func TestOrderService_GetForShopperChecksOwnership(t *testing.T) {
	t.Parallel()

	svc, _, _, order := newOrderFixture(t)
	ctx := context.Background()

	got, err := svc.GetForShopper(ctx, order.ID, "shopper-1")
	if err != nil || got.ID != order.ID {
		t.Fatalf("GetForShopper() = %+v, %v", got, err)
	}
	for _, shopper := range []string{"shopper-2", ""} {
		if _, err := svc.GetForShopper(ctx, order.ID, shopper); !errors.Is(err, orders.ErrNotFound) {
			t.Fatalf("shopper %q: expected ErrNotFound, got %v", shopper, err)
		}
	}

	listed, err := svc.ListForShopper(ctx, "")
	if err != nil || len(listed) != 0 {
		t.Fatalf("expected no orders without shopper, got %d, %v", len(listed), err)
	}
}

func TestOrderService_CancelValidation(t *testing.T) {
	t.Parallel()

	svc, manager, notifier, order := newOrderFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		reason string
		notes  string
	}{
		{name: "empty reason", reason: "  "},
		{name: "unknown reason", reason: "Bored"},
		{name: "other reason without notes", reason: orders.ReasonOther},
		{name: "notes over the character limit", reason: orders.ReasonOther, notes: strings.Repeat("é", orders.MaxNotesLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Cancel(ctx, order.ID, "shopper-1", tt.reason, tt.notes); !errors.Is(err, orders.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	stored, err := manager.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != models.StatusSuccess {
		t.Fatalf("status = %s, want success", stored.Status)
	}
	if len(notifier.cancelled) != 0 {
		t.Fatal("expected no cancellation notice")
	}
}

func TestOrderService_CancelCountsNoteCharacters(t *testing.T) {
	t.Parallel()

	svc, _, _, order := newOrderFixture(t)
	notes := strings.Repeat("é", orders.MaxNotesLength)
	cancelled, err := svc.Cancel(context.Background(), order.ID, "shopper-1", orders.ReasonOther, notes)
	if err != nil {
		t.Fatalf("expected multibyte notes at the limit to be accepted, got %v", err)
	}
	if cancelled.AdditionalNotes != notes {
		t.Fatal("expected notes to be stored unchanged")
	}
}

func TestOrderService_Cancel(t *testing.T) {
	t.Parallel()

	svc, _, notifier, order := newOrderFixture(t)
	ctx := context.Background()

	if _, err := svc.Cancel(ctx, order.ID, "shopper-2", orders.ReasonChangedMind, ""); !errors.Is(err, orders.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another shopper, got %v", err)
	}

	cancelled, err := svc.Cancel(ctx, order.ID, "shopper-1", orders.ReasonOther, "Ordered the wrong size")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != models.StatusCancelled || cancelled.CancellationReason != orders.ReasonOther || cancelled.AdditionalNotes != "Ordered the wrong size" {
		t.Fatalf("unexpected order: %+v", cancelled)
	}
	if len(notifier.cancelled) != 1 {
		t.Fatalf("expected one cancellation notice, got %d", len(notifier.cancelled))
	}

	if _, err := svc.Cancel(ctx, order.ID, "shopper-1", orders.ReasonChangedMind, ""); !errors.Is(err, orders.ErrStaleState) {
		t.Fatalf("expected ErrStaleState on second cancel, got %v", err)
	}
	if len(notifier.cancelled) != 1 {
		t.Fatal("expected no notice for a rejected cancel")
	}
}
