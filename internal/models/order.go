package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusSuccess   OrderStatus = "success"
	StatusCancelled OrderStatus = "cancelled"

	// StatusUnsaved marks an order that was confirmed by payment but could not
	// be written to the document store. It is never persisted.
	StatusUnsaved OrderStatus = "unsaved"
)

// IsPersisted reports whether the status is one a stored order may carry.
func (s OrderStatus) IsPersisted() bool {
	return s == StatusSuccess || s == StatusCancelled
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCancelled
}

type Order struct {
	ID                 string          `json:"id"`
	OrderID            string          `json:"orderId"`
	PaymentID          string          `json:"paymentId"`
	Amount             decimal.Decimal `json:"amount"`
	Items              []LineItem      `json:"items"`
	CustomerInfo       CustomerInfo    `json:"customerInfo"`
	Status             OrderStatus     `json:"status"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	AdditionalNotes    string          `json:"additionalNotes,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	CancelledAt        time.Time       `json:"cancelledAt,omitempty"`
}

// CanCancel reports whether the order may transition to cancelled.
func (o *Order) CanCancel() bool {
	return o != nil && o.ID != "" && o.Status == StatusSuccess
}

func (o *Order) IsCancelled() bool {
	return o != nil && o.Status == StatusCancelled
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Items != nil {
		clone.Items = make([]LineItem, len(o.Items))
		copy(clone.Items, o.Items)
	}
	return &clone
}

type LineItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Total returns price multiplied by quantity.
func (i LineItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CustomerInfo struct {
	UserID  string  `json:"userId,omitempty"`
	Name    string  `json:"name,omitempty"`
	Email   string  `json:"email,omitempty"`
	Phone   string  `json:"phone,omitempty"`
	Address Address `json:"address"`
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

func (a Address) IsEmpty() bool {
	return a == Address{}
}

// OrderPayload is the transient order handed from checkout to confirmation.
type OrderPayload struct {
	PaymentID    string          `json:"paymentId"`
	OrderID      string          `json:"orderId,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Items        []LineItem      `json:"items"`
	CustomerInfo CustomerInfo    `json:"customerInfo"`
}
