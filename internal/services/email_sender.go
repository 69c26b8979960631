package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/getsentry/sentry-go/attribute"

	"github.com/gitshopapp/storefront/internal/email"
	"github.com/gitshopapp/storefront/internal/invoice"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/observability"
)

// OrderNotifier emails shoppers about order transitions. Delivery is best
// effort: failures are logged and never reach the caller.
type OrderNotifier struct {
	provider    email.Provider
	renderer    *email.Renderer
	invoiceOpts invoice.Options
	baseURL     string
	logger      *slog.Logger
}

// NewOrderNotifier returns a notifier. A nil provider disables delivery.
func NewOrderNotifier(provider email.Provider, invoiceOpts invoice.Options, baseURL string, logger *slog.Logger) (*OrderNotifier, error) {
	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create email renderer: %w", err)
	}
	return &OrderNotifier{
		provider:    provider,
		renderer:    renderer,
		invoiceOpts: invoiceOpts,
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      logger,
	}, nil
}

func (n *OrderNotifier) OrderConfirmed(ctx context.Context, order *models.Order) {
	n.notify(ctx, email.TemplateOrderConfirmation, order)
}

func (n *OrderNotifier) OrderCancelled(ctx context.Context, order *models.Order) {
	n.notify(ctx, email.TemplateOrderCancelled, order)
}

func (n *OrderNotifier) notify(ctx context.Context, template string, order *models.Order) {
	if n == nil || n.provider == nil || order == nil {
		return
	}
	logger := logging.FromContext(ctx, n.logger)
	recipient := strings.TrimSpace(order.CustomerInfo.Email)
	if recipient == "" {
		logger.Info("skipping order email without recipient", "template", template, "order_id", order.OrderID)
		return
	}

	if err := n.send(ctx, template, order, recipient); err != nil {
		observability.Count(ctx, "email.failed", attribute.String("template", template))
		logger.Error("failed to send order email", "error", err, "template", template, "order_id", order.OrderID, "recipient", recipient)
		return
	}
	observability.Count(ctx, "email.sent", attribute.String("template", template))
	logger.Debug("order email sent", "template", template, "order_id", order.OrderID, "recipient", recipient)
}

func (n *OrderNotifier) send(ctx context.Context, template string, order *models.Order, recipient string) error {
	inv, err := invoice.Build(order, n.invoiceOpts)
	if err != nil {
		return err
	}
	orderURL := ""
	if n.baseURL != "" && order.ID != "" {
		orderURL = n.baseURL + "/orders/" + order.ID
	}

	message, err := n.renderer.Render(template, email.NewOrderInfo(inv, recipient, orderURL))
	if err != nil {
		return err
	}
	return n.provider.SendEmail(ctx, message)
}
