package orders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/storefront/internal/docstore"
	"github.com/gitshopapp/storefront/internal/models"
)

const collection = "orders"

var documentValidator = validator.New(validator.WithRequiredStructEnabled())

type orderDocument struct {
	ID                 string              `json:"id" validate:"required"`
	OrderID            string              `json:"orderId" validate:"required"`
	PaymentID          string              `json:"paymentId" validate:"required"`
	Amount             decimal.Decimal     `json:"amount"`
	Items              []itemDocument      `json:"items" validate:"dive"`
	CustomerInfo       models.CustomerInfo `json:"customerInfo"`
	Status             string              `json:"status" validate:"required,oneof=success cancelled"`
	CancellationReason string              `json:"cancellationReason"`
	AdditionalNotes    string              `json:"additionalNotes"`
	CreatedAt          *time.Time          `json:"createdAt" validate:"required"`
	CancelledAt        *time.Time          `json:"cancelledAt"`
}

type itemDocument struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gte=1"`
}

// encodeNewOrder builds the document written on creation. createdAt is left to the store clock.
func encodeNewOrder(order *models.Order) (docstore.Document, error) {
	items := make([]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{
			"name":     item.Name,
			"price":    item.Price.String(),
			"quantity": item.Quantity,
		})
	}

	customer, err := toMap(order.CustomerInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to encode customer info: %w", err)
	}

	return docstore.Document{
		"orderId":      order.OrderID,
		"paymentId":    order.PaymentID,
		"amount":       order.Amount.String(),
		"items":        items,
		"customerInfo": customer,
		"status":       string(models.StatusSuccess),
		"createdAt":    docstore.ServerTimestamp,
	}, nil
}

func cancellationFields(reason, notes string) docstore.Document {
	return docstore.Document{
		"status":             string(models.StatusCancelled),
		"cancellationReason": reason,
		"additionalNotes":    notes,
		"cancelledAt":        docstore.ServerTimestamp,
	}
}

// decodeOrder validates a stored document and converts it into an Order.
func decodeOrder(doc docstore.Document) (*models.Order, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var stored orderDocument
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := documentValidator.Struct(stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := checkStoredInvariants(stored); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, stored.ID, err)
	}

	order := &models.Order{
		ID:                 stored.ID,
		OrderID:            stored.OrderID,
		PaymentID:          stored.PaymentID,
		Amount:             stored.Amount,
		CustomerInfo:       stored.CustomerInfo,
		Status:             models.OrderStatus(stored.Status),
		CancellationReason: stored.CancellationReason,
		AdditionalNotes:    stored.AdditionalNotes,
		CreatedAt:          stored.CreatedAt.UTC(),
	}
	if stored.CancelledAt != nil {
		order.CancelledAt = stored.CancelledAt.UTC()
	}
	order.Items = make([]models.LineItem, 0, len(stored.Items))
	for _, item := range stored.Items {
		order.Items = append(order.Items, models.LineItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return order, nil
}

func checkStoredInvariants(stored orderDocument) error {
	if stored.Amount.IsNegative() {
		return fmt.Errorf("amount is negative")
	}
	for i, item := range stored.Items {
		if item.Price.IsNegative() {
			return fmt.Errorf("item %d price is negative", i)
		}
	}

	cancelled := stored.Status == string(models.StatusCancelled)
	hasCancelledAt := stored.CancelledAt != nil && !stored.CancelledAt.IsZero()
	hasReason := stored.CancellationReason != ""
	if cancelled != hasCancelledAt {
		return fmt.Errorf("cancelledAt must be set exactly when status is cancelled")
	}
	if cancelled != hasReason {
		return fmt.Errorf("cancellationReason must be set exactly when status is cancelled")
	}
	if !cancelled && stored.AdditionalNotes != "" {
		return fmt.Errorf("additionalNotes set on an order that is not cancelled")
	}
	return nil
}

func toMap(value any) (map[string]any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
