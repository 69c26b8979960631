// Package invoice renders a read-only summary of an order.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gitshopapp/storefront/internal/models"
)

// NotProvided is shown wherever the order snapshot has no value.
const NotProvided = "Not provided"

const dateLayout = "January 2, 2006 15:04 MST"

type Invoice struct {
	Number             string
	Reference          string
	PaymentID          string
	Status             models.OrderStatus
	StatusLabel        string
	IssuedAt           string
	CancelledAt        string
	CancellationReason string
	AdditionalNotes    string
	ShopName           string
	Customer           Party
	Lines              []Line
	Subtotal           string
	Total              string
}

type Party struct {
	Name    string
	Email   string
	Phone   string
	Address []string
}

type Line struct {
	Name      string
	Quantity  int
	UnitPrice string
	Total     string
}

type Options struct {
	ShopName       string
	CurrencySymbol string
	Location       *time.Location
}

// Build converts an order snapshot into an invoice. Absent fields become NotProvided.
func Build(order *models.Order, opts Options) (*Invoice, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}
	symbol := opts.CurrencySymbol
	if symbol == "" {
		symbol = "$"
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	inv := &Invoice{
		Number:      orDefault(order.OrderID),
		Reference:   orDefault(order.ID),
		PaymentID:   orDefault(order.PaymentID),
		Status:      order.Status,
		StatusLabel: StatusLabel(order.Status),
		IssuedAt:    formatTime(order.CreatedAt, loc),
		ShopName:    orDefault(opts.ShopName),
		Customer: Party{
			Name:    orDefault(order.CustomerInfo.Name),
			Email:   orDefault(order.CustomerInfo.Email),
			Phone:   orDefault(order.CustomerInfo.Phone),
			Address: addressLines(order.CustomerInfo.Address),
		},
		Total: FormatMoney(order.Amount, symbol),
	}

	subtotal := decimal.Zero
	inv.Lines = make([]Line, 0, len(order.Items))
	for _, item := range order.Items {
		subtotal = subtotal.Add(item.Total())
		inv.Lines = append(inv.Lines, Line{
			Name:      orDefault(item.Name),
			Quantity:  item.Quantity,
			UnitPrice: FormatMoney(item.Price, symbol),
			Total:     FormatMoney(item.Total(), symbol),
		})
	}
	inv.Subtotal = FormatMoney(subtotal, symbol)

	if order.IsCancelled() {
		inv.CancelledAt = formatTime(order.CancelledAt, loc)
		inv.CancellationReason = orDefault(order.CancellationReason)
		inv.AdditionalNotes = orDefault(order.AdditionalNotes)
	}
	return inv, nil
}

// FormatMoney renders an amount with two decimal places.
func FormatMoney(amount decimal.Decimal, symbol string) string {
	return symbol + amount.StringFixed(2)
}

func StatusLabel(status models.OrderStatus) string {
	switch status {
	case models.StatusSuccess:
		return "Paid"
	case models.StatusCancelled:
		return "Cancelled"
	case models.StatusUnsaved:
		return "Not saved yet"
	default:
		return NotProvided
	}
}

// IsCancelled reports whether the invoice describes a cancelled order.
func (i *Invoice) IsCancelled() bool {
	return i != nil && i.Status == models.StatusCancelled
}

// Filename returns the download name for the text rendering.
func (i *Invoice) Filename() string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, i.Number)
	return "invoice-" + name + ".txt"
}

func addressLines(addr models.Address) []string {
	if addr.IsEmpty() {
		return []string{NotProvided}
	}

	var lines []string
	for _, line := range []string{addr.Line1, addr.Line2} {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	var locality []string
	for _, part := range []string{addr.City, addr.State, addr.PostalCode} {
		if strings.TrimSpace(part) != "" {
			locality = append(locality, part)
		}
	}
	if len(locality) > 0 {
		lines = append(lines, strings.Join(locality, ", "))
	}
	if strings.TrimSpace(addr.Country) != "" {
		lines = append(lines, addr.Country)
	}
	return lines
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return NotProvided
	}
	return t.In(loc).Format(dateLayout)
}

func orDefault(value string) string {
	if strings.TrimSpace(value) == "" {
		return NotProvided
	}
	return value
}
