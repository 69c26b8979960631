package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"

	"github.com/gitshopapp/storefront/internal/invoice"
)

const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplateOrderCancelled    = "order_cancelled"
)

// OrderInfo contains all the information needed for order email templates
type OrderInfo struct {
	OrderNumber        string
	OrderDate          string
	OrderURL           string
	CustomerName       string
	CustomerEmail      string
	ShopName           string
	ShippingAddress    []string
	Items              []invoice.Line
	Subtotal           string
	Total              string
	CancelledDate      string
	CancellationReason string
	AdditionalNotes    string
}

// NewOrderInfo builds template data from a rendered invoice.
func NewOrderInfo(inv *invoice.Invoice, customerEmail, orderURL string) *OrderInfo {
	if inv == nil {
		return &OrderInfo{CustomerEmail: customerEmail, OrderURL: orderURL}
	}
	info := &OrderInfo{
		OrderNumber:     inv.Number,
		OrderDate:       inv.IssuedAt,
		OrderURL:        orderURL,
		CustomerName:    inv.Customer.Name,
		CustomerEmail:   strings.TrimSpace(customerEmail),
		ShopName:        inv.ShopName,
		ShippingAddress: inv.Customer.Address,
		Items:           inv.Lines,
		Subtotal:        inv.Subtotal,
		Total:           inv.Total,
	}
	if info.CustomerName == invoice.NotProvided {
		info.CustomerName = "there"
	}
	if inv.IsCancelled() {
		info.CancelledDate = inv.CancelledAt
		info.CancellationReason = inv.CancellationReason
		if inv.AdditionalNotes != invoice.NotProvided {
			info.AdditionalNotes = inv.AdditionalNotes
		}
	}
	return info
}

type emailTemplate struct {
	subject string
	html    string
	text    string
}

var templates = map[string]emailTemplate{
	TemplateOrderConfirmation: {
		subject: "Order Confirmed - {{.OrderNumber}} - {{.ShopName}}",
		html:    orderConfirmationHTML,
		text:    orderConfirmationText,
	},
	TemplateOrderCancelled: {
		subject: "Order Cancelled - {{.OrderNumber}} - {{.ShopName}}",
		html:    orderCancelledHTML,
		text:    orderCancelledText,
	},
}

// Renderer provides methods to render email templates
type Renderer struct {
	subjects *template.Template
	text     *template.Template
	html     *htmltemplate.Template
}

// NewRenderer parses the built-in templates.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		subjects: template.New("subjects"),
		text:     template.New("text"),
		html:     htmltemplate.New("html"),
	}

	for key, t := range templates {
		if _, err := r.subjects.New(key).Parse(t.subject); err != nil {
			return nil, fmt.Errorf("failed to parse subject template %s: %w", key, err)
		}
		if _, err := r.text.New(key).Parse(t.text); err != nil {
			return nil, fmt.Errorf("failed to parse text template %s: %w", key, err)
		}
		if _, err := r.html.New(key).Parse(t.html); err != nil {
			return nil, fmt.Errorf("failed to parse HTML template %s: %w", key, err)
		}
	}

	return r, nil
}

// Render renders an email template with the given data
func (r *Renderer) Render(templateName string, data *OrderInfo) (*Email, error) {
	if data == nil {
		return nil, fmt.Errorf("order info is required")
	}
	if _, ok := templates[templateName]; !ok {
		return nil, fmt.Errorf("unknown email template %s", templateName)
	}

	var subject, textBuf, htmlBuf bytes.Buffer
	if err := r.subjects.ExecuteTemplate(&subject, templateName, data); err != nil {
		return nil, fmt.Errorf("failed to render subject: %w", err)
	}
	if err := r.text.ExecuteTemplate(&textBuf, templateName, data); err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}
	if err := r.html.ExecuteTemplate(&htmlBuf, templateName, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &Email{
		To:       data.CustomerEmail,
		Subject:  subject.String(),
		Text:     textBuf.String(),
		HTML:     htmlBuf.String(),
		Category: templateName,
	}, nil
}

const orderConfirmationText = `Thank you for your order, {{.CustomerName}}!

Order Number: {{.OrderNumber}}
Order Date: {{.OrderDate}}

Items:
{{range .Items}}- {{.Name}} x{{.Quantity}} - {{.Total}}
{{end}}
Subtotal: {{.Subtotal}}
Total: {{.Total}}

Ship to:
{{range .ShippingAddress}}{{.}}
{{end}}
{{if .OrderURL}}View or print your invoice: {{.OrderURL}}{{end}}

Thank you for shopping with {{.ShopName}}!
`

const orderConfirmationHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Order Confirmation</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #2563eb; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .items-table { width: 100%; border-collapse: collapse; margin: 15px 0; }
    .items-table th { text-align: left; padding: 10px; background: #f3f4f6; border-bottom: 2px solid #e5e7eb; }
    .items-table td { padding: 10px; border-bottom: 1px solid #e5e7eb; }
    .total { font-size: 18px; font-weight: bold; text-align: right; padding: 15px 0; }
    .button { display: inline-block; background: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 15px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Order Confirmed!</h1>
    <p>Thank you for your order, {{.CustomerName}}</p>
  </div>
  <div class="content">
    <p><strong>Order Number:</strong> {{.OrderNumber}}<br>
    <strong>Order Date:</strong> {{.OrderDate}}</p>
    <table class="items-table">
      <thead><tr><th>Item</th><th>Qty</th><th>Price</th></tr></thead>
      <tbody>
        {{range .Items}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Total}}</td></tr>
        {{end}}
      </tbody>
    </table>
    <div class="total">
      <p>Subtotal: {{.Subtotal}}</p>
      <p>Total: {{.Total}}</p>
    </div>
    <h3>Ship to</h3>
    <p>{{range .ShippingAddress}}{{.}}<br>{{end}}</p>
    {{if .OrderURL}}<p><a href="{{.OrderURL}}" class="button">View your invoice</a></p>{{end}}
  </div>
</body>
</html>
`

const orderCancelledText = `Your order {{.OrderNumber}} has been cancelled.

Cancelled: {{.CancelledDate}}
Reason: {{.CancellationReason}}
{{if .AdditionalNotes}}Notes: {{.AdditionalNotes}}
{{end}}
Order total: {{.Total}}

{{if .OrderURL}}Order details: {{.OrderURL}}{{end}}

{{.ShopName}}
`

const orderCancelledHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Order Cancelled</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #dc2626; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .button { display: inline-block; background: #dc2626; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 15px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Order Cancelled</h1>
    <p>Order {{.OrderNumber}}</p>
  </div>
  <div class="content">
    <p><strong>Cancelled:</strong> {{.CancelledDate}}</p>
    <p><strong>Reason:</strong> {{.CancellationReason}}</p>
    {{if .AdditionalNotes}}<p><strong>Notes:</strong> {{.AdditionalNotes}}</p>{{end}}
    <p><strong>Order total:</strong> {{.Total}}</p>
    {{if .OrderURL}}<p><a href="{{.OrderURL}}" class="button">View order</a></p>{{end}}
  </div>
</body>
</html>
`
