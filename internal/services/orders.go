package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/orders"
)

// ErrInvalidInput reports a request rejected before reaching the order lifecycle.
var ErrInvalidInput = errors.New("invalid input")

type orderLifecycle interface {
	CancelOrder(ctx context.Context, order *models.Order, reason, notes string) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*models.Order, error)
}

type orderCancellationNotifier interface {
	OrderCancelled(ctx context.Context, order *models.Order)
}

// OrderService scopes order reads and cancellation to the shopper who placed them.
type OrderService struct {
	lifecycle orderLifecycle
	notifier  orderCancellationNotifier
	logger    *slog.Logger
}

func NewOrderService(lifecycle orderLifecycle, notifier orderCancellationNotifier, logger *slog.Logger) *OrderService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &OrderService{
		lifecycle: lifecycle,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *OrderService) ListForShopper(ctx context.Context, shopperID string) ([]*models.Order, error) {
	if strings.TrimSpace(shopperID) == "" {
		return nil, nil
	}
	return s.lifecycle.ListOrders(ctx, shopperID)
}

// GetForShopper returns the order only when it belongs to shopperID.
func (s *OrderService) GetForShopper(ctx context.Context, id, shopperID string) (*models.Order, error) {
	order, err := s.lifecycle.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if shopperID == "" || order.CustomerInfo.UserID != shopperID {
		return nil, orders.ErrNotFound
	}
	return order, nil
}

// Cancel validates the submitted form and cancels the shopper's order.
func (s *OrderService) Cancel(ctx context.Context, id, shopperID, reason, notes string) (*models.Order, error) {
	reason = strings.TrimSpace(reason)
	notes = strings.TrimSpace(notes)
	if reason == "" {
		return nil, fmt.Errorf("%w: please select a cancellation reason", orders.ErrValidation)
	}
	if !orders.IsValidReason(reason) {
		return nil, fmt.Errorf("%w: unknown cancellation reason", orders.ErrValidation)
	}
	if reason == orders.ReasonOther && notes == "" {
		return nil, fmt.Errorf("%w: please describe your reason", orders.ErrValidation)
	}
	if utf8.RuneCountInString(notes) > orders.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes cannot exceed %d characters", orders.ErrValidation, orders.MaxNotesLength)
	}

	order, err := s.GetForShopper(ctx, id, shopperID)
	if err != nil {
		return nil, err
	}

	cancelled, err := s.lifecycle.CancelOrder(ctx, order, reason, notes)
	if err != nil {
		return order, err
	}

	logging.FromContext(ctx, s.logger).Info("order cancelled", "order_id", cancelled.OrderID, "id", cancelled.ID, "reason", reason)
	s.notifier.OrderCancelled(ctx, cancelled)
	return cancelled, nil
}

type noopNotifier struct{}

func (noopNotifier) OrderConfirmed(context.Context, *models.Order) {}

func (noopNotifier) OrderCancelled(context.Context, *models.Order) {}
