// Package cart renders the priced cart table shared by the cart and checkout pages.
package cart

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/invoice"
	"github.com/gitshopapp/storefront/ui/markup"
)

type Line struct {
	SKU       string
	Name      string
	Quantity  int
	UnitPrice string
	Total     string
}

type SummaryProps struct {
	Lines        []Line
	Subtotal     string
	Shipping     string
	Total        string
	ShippingNote string
	// Editable adds remove buttons to each line.
	Editable bool
}

// FormatCents renders an integer amount of cents with the currency symbol.
func FormatCents(cents int, symbol string) string {
	return invoice.FormatMoney(catalog.CentsToDecimal(int64(cents)), symbol)
}

// FromQuote converts a catalog quote into display rows.
func FromQuote(quote *catalog.Quote, symbol string) SummaryProps {
	if quote == nil {
		return SummaryProps{}
	}
	props := SummaryProps{
		Lines:    make([]Line, 0, len(quote.Lines)),
		Subtotal: FormatCents(quote.SubtotalCents, symbol),
		Shipping: FormatCents(quote.ShippingCents, symbol),
		Total:    FormatCents(quote.TotalCents, symbol),
	}
	for _, line := range quote.Lines {
		props.Lines = append(props.Lines, Line{
			SKU:       line.Product.SKU,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			UnitPrice: FormatCents(line.Product.UnitPriceCents, symbol),
			Total:     FormatCents(line.TotalCents, symbol),
		})
	}
	return props
}

func itemCount(lines []Line) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

func Summary(props SummaryProps) templ.Component {
	return markup.Component(func(_ context.Context, b *markup.Builder) error {
		b.Raw(`<section class="cart-summary">`)
		b.Raw(`<p class="text-sm text-gray-500">`, strconv.Itoa(itemCount(props.Lines)), ` item(s)</p>`)
		b.Raw(`<table class="w-full text-sm"><thead><tr class="border-b text-left">`)
		b.Raw(`<th class="py-2">Product</th><th class="py-2 text-right">Qty</th><th class="py-2 text-right">Price</th><th class="py-2 text-right">Total</th>`)
		if props.Editable {
			b.Raw(`<th class="py-2"></th>`)
		}
		b.Raw(`</tr></thead><tbody>`)
		for _, line := range props.Lines {
			b.Raw(`<tr class="border-b"><td class="py-2">`)
			b.Text(line.Name)
			b.Raw(`</td><td class="py-2 text-right">`, strconv.Itoa(line.Quantity), `</td><td class="py-2 text-right">`)
			b.Text(line.UnitPrice)
			b.Raw(`</td><td class="py-2 text-right">`)
			b.Text(line.Total)
			b.Raw(`</td>`)
			if props.Editable {
				b.Raw(`<td class="py-2 text-right"><form method="post" action="/cart/remove"><input type="hidden" name="sku" value="`)
				b.Text(line.SKU)
				b.Raw(`"><button type="submit" class="text-red-600">Remove</button></form></td>`)
			}
			b.Raw(`</tr>`)
		}
		b.Raw(`</tbody></table>`)

		b.Raw(`<dl class="mt-4 grid grid-cols-2 gap-2 text-sm">`)
		summaryRow(b, "Subtotal", props.Subtotal, "")
		summaryRow(b, "Shipping", props.Shipping, "")
		summaryRow(b, "Total", props.Total, "font-bold")
		b.Raw(`</dl>`)
		if props.ShippingNote != "" {
			b.Raw(`<p class="mt-2 text-xs text-gray-500">`)
			b.Text(props.ShippingNote)
			b.Raw(`</p>`)
		}
		b.Raw(`</section>`)
		return nil
	})
}

func summaryRow(b *markup.Builder, label, value, class string) {
	if class == "" {
		b.Raw(`<dt>`, label, `</dt><dd class="text-right">`)
	} else {
		b.Raw(`<dt class="`, class, `">`, label, `</dt><dd class="text-right `, class, `">`)
	}
	b.Text(value)
	b.Raw(`</dd>`)
}
