// Package orders owns the order lifecycle: creation after payment and
// cancellation by the shopper.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/gitshopapp/storefront/internal/docstore"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/observability"
)

const orderIDPrefix = "ORD-"

type Manager struct {
	store  docstore.Store
	logger *slog.Logger
}

func NewManager(store docstore.Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
	}
}

func (m *Manager) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, m.logger)
}

// DeriveOrderID returns "ORD-" followed by the last six characters of paymentID.
func DeriveOrderID(paymentID string) string {
	tail := []rune(paymentID)
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return orderIDPrefix + string(tail)
}

// CreateOrder persists a new order in the success state. It is not idempotent:
// every call writes a new document. When the write fails the returned order
// carries StatusUnsaved alongside an ErrTransientWrite error.
func (m *Manager) CreateOrder(ctx context.Context, payload models.OrderPayload) (*models.Order, error) {
	span := sentry.StartSpan(
		ctx,
		"service.orders.create",
		sentry.WithOpName("service.orders"),
		sentry.WithDescription("CreateOrder"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := m.loggerFromContext(ctx)
	meter := observability.MeterFromContext(ctx)
	recordFailure := func(reason string) {
		meter.Count("order.create.failed", 1, sentry.WithAttributes(
			attribute.String("reason", reason),
		))
	}

	order, err := newOrder(payload)
	if err != nil {
		recordFailure("validation")
		return nil, err
	}

	doc, err := encodeNewOrder(order)
	if err != nil {
		recordFailure("encode")
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	id, err := m.store.Create(ctx, collection, doc)
	if err != nil {
		recordFailure("store_create")
		logger.Error("failed to persist order", "error", err, "order_id", order.OrderID, "payment_id", order.PaymentID)
		order.Status = models.StatusUnsaved
		return order, fmt.Errorf("%w: %w", ErrTransientWrite, err)
	}
	order.ID = id
	order.Status = models.StatusSuccess

	// createdAt is assigned by the store; read it back so the caller sees the stored value.
	stored, err := m.GetOrder(ctx, id)
	if err != nil {
		logger.Warn("order persisted but read-back failed", "error", err, "id", id)
		order.CreatedAt = nowUTC()
	} else {
		order = stored
	}

	meter.Count("order.created", 1)
	logger.Info("order created", "id", order.ID, "order_id", order.OrderID, "payment_id", order.PaymentID, "amount", order.Amount.StringFixed(2))
	return order, nil
}

// CancelOrder moves a persisted success order to cancelled. The update only
// applies while the stored status is still success; otherwise ErrStaleState is
// returned and the store is left untouched. The input order is never mutated.
func (m *Manager) CancelOrder(ctx context.Context, order *models.Order, reason, notes string) (*models.Order, error) {
	span := sentry.StartSpan(
		ctx,
		"service.orders.cancel",
		sentry.WithOpName("service.orders"),
		sentry.WithDescription("CancelOrder"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := m.loggerFromContext(ctx)
	meter := observability.MeterFromContext(ctx)
	recordRejected := func(reason string) {
		meter.Count("order.cancel.rejected", 1, sentry.WithAttributes(
			attribute.String("reason", reason),
		))
	}

	if order == nil {
		recordRejected("missing_order")
		return nil, fmt.Errorf("%w: order is required", ErrValidation)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		recordRejected("missing_reason")
		return nil, fmt.Errorf("%w: cancellation reason is required", ErrValidation)
	}
	if order.IsCancelled() {
		recordRejected("already_cancelled")
		return nil, fmt.Errorf("%w: order %s is already cancelled", ErrStaleState, order.OrderID)
	}
	if !order.CanCancel() {
		recordRejected("not_persisted")
		return nil, fmt.Errorf("%w: order %s has not been saved", ErrValidation, order.OrderID)
	}

	err := m.store.Update(ctx, collection, order.ID, cancellationFields(reason, notes),
		docstore.FieldEquals("status", string(models.StatusSuccess)))
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrPreconditionFailed):
			recordRejected("stale_state")
			logger.Warn("order changed before cancellation was written", "id", order.ID, "order_id", order.OrderID)
			return nil, fmt.Errorf("%w: order %s was already cancelled", ErrStaleState, order.OrderID)
		case errors.Is(err, docstore.ErrNotFound):
			recordRejected("not_found")
			return nil, fmt.Errorf("%w: %s", ErrNotFound, order.ID)
		default:
			recordRejected("store_update")
			logger.Error("failed to cancel order", "error", err, "id", order.ID, "order_id", order.OrderID)
			return nil, fmt.Errorf("%w: %w", ErrTransientWrite, err)
		}
	}

	cancelled, err := m.GetOrder(ctx, order.ID)
	if err != nil {
		logger.Warn("order cancelled but read-back failed", "error", err, "id", order.ID)
		cancelled = order.Clone()
		cancelled.Status = models.StatusCancelled
		cancelled.CancellationReason = reason
		cancelled.AdditionalNotes = notes
		cancelled.CancelledAt = nowUTC()
	}

	meter.Count("order.cancelled", 1, sentry.WithAttributes(
		attribute.String("reason", reason),
	))
	logger.Info("order cancelled", "id", cancelled.ID, "order_id", cancelled.OrderID, "reason", reason)
	return cancelled, nil
}

// GetOrder reads and validates a single order.
func (m *Manager) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	doc, err := m.store.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return decodeOrder(doc)
}

// ListOrders returns the orders placed by userID, newest first. Documents
// that fail validation are logged and skipped.
func (m *Manager) ListOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	span := sentry.StartSpan(
		ctx,
		"service.orders.list",
		sentry.WithOpName("service.orders"),
		sentry.WithDescription("ListOrders"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	docs, err := m.store.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	logger := m.loggerFromContext(ctx)
	result := make([]*models.Order, 0, len(docs))
	for _, doc := range docs {
		order, err := decodeOrder(doc)
		if err != nil {
			logger.Warn("skipping invalid order document", "error", err, "id", doc["id"])
			continue
		}
		if userID != "" && order.CustomerInfo.UserID != userID {
			continue
		}
		result = append(result, order)
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

func newOrder(payload models.OrderPayload) (*models.Order, error) {
	paymentID := strings.TrimSpace(payload.PaymentID)
	if paymentID == "" {
		return nil, fmt.Errorf("%w: paymentId is required", ErrValidation)
	}
	if payload.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}

	orderID := strings.TrimSpace(payload.OrderID)
	if orderID == "" {
		orderID = DeriveOrderID(paymentID)
	}

	items := make([]models.LineItem, 0, len(payload.Items))
	for i, item := range payload.Items {
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("%w: item %d price must not be negative", ErrValidation, i)
		}
		if item.Quantity < 0 {
			return nil, fmt.Errorf("%w: item %d quantity must not be negative", ErrValidation, i)
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("%w: item %d name is required", ErrValidation, i)
		}
		items = append(items, item)
	}

	return &models.Order{
		OrderID:      orderID,
		PaymentID:    paymentID,
		Amount:       payload.Amount,
		Items:        items,
		CustomerInfo: payload.CustomerInfo,
	}, nil
}
