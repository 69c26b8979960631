package invoice

import (
	"fmt"
	"io"
	"text/template"
)

var textTemplate = template.Must(template.New("invoice_text").Parse(`INVOICE {{.Number}}
{{.ShopName}}

Status:     {{.StatusLabel}}
Issued:     {{.IssuedAt}}
Payment ID: {{.PaymentID}}
Reference:  {{.Reference}}

Bill to
  {{.Customer.Name}}
  {{.Customer.Email}}
  {{.Customer.Phone}}
{{range .Customer.Address}}  {{.}}
{{end}}
Items
{{range .Lines}}  {{.Name}} x{{.Quantity}} @ {{.UnitPrice}} = {{.Total}}
{{else}}  No items
{{end}}
Subtotal: {{.Subtotal}}
Total:    {{.Total}}
{{if .IsCancelled}}
Cancelled:  {{.CancelledAt}}
Reason:     {{.CancellationReason}}
Notes:      {{.AdditionalNotes}}
{{end}}`))

// WriteText renders the plain-text invoice used for downloads.
func WriteText(w io.Writer, inv *Invoice) error {
	if inv == nil {
		return fmt.Errorf("invoice is required")
	}
	if err := textTemplate.Execute(w, inv); err != nil {
		return fmt.Errorf("failed to render invoice text: %w", err)
	}
	return nil
}
