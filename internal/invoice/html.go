package invoice

import (
	"context"
	"fmt"
	"strconv"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/ui/markup"
)

const badgeBase = "inline-flex items-center rounded-full px-3 py-1 text-xs font-semibold bg-gray-100 text-gray-700"

// BadgeClass returns the tailwind classes for a status badge.
func BadgeClass(status models.OrderStatus) string {
	switch status {
	case models.StatusSuccess:
		return twmerge.Merge(badgeBase, "bg-green-100 text-green-800")
	case models.StatusCancelled:
		return twmerge.Merge(badgeBase, "bg-red-100 text-red-800")
	case models.StatusUnsaved:
		return twmerge.Merge(badgeBase, "bg-amber-100 text-amber-800")
	default:
		return badgeBase
	}
}

// Component renders the printable invoice. downloadURL may be empty.
func Component(inv *Invoice, downloadURL string) templ.Component {
	return markup.Component(func(_ context.Context, b *markup.Builder) error {
		if inv == nil {
			return fmt.Errorf("invoice is required")
		}

		b.Raw(`<article class="invoice mx-auto max-w-3xl bg-white p-8 shadow print:shadow-none" id="invoice">`)
		b.Raw(`<header class="flex items-start justify-between border-b pb-6">`)
		b.Raw(`<div><h1 class="text-2xl font-bold">Invoice `)
		b.Text(inv.Number)
		b.Raw(`</h1>`)
		b.Raw(`<p class="text-sm text-gray-500">`)
		b.Text(inv.ShopName)
		b.Raw(`</p></div>`)
		b.Raw(`<span class="`)
		b.Text(BadgeClass(inv.Status))
		b.Raw(`">`)
		b.Text(inv.StatusLabel)
		b.Raw(`</span>`)
		b.Raw(`</header>`)

		b.Raw(`<dl class="grid grid-cols-2 gap-4 py-6 text-sm">`)
		writeTerm(b, "Issued", inv.IssuedAt)
		writeTerm(b, "Payment ID", inv.PaymentID)
		writeTerm(b, "Reference", inv.Reference)
		b.Raw(`</dl>`)

		b.Raw(`<section class="py-4"><h2 class="font-semibold">Bill to</h2><address class="not-italic text-sm">`)
		b.Text(inv.Customer.Name)
		b.Raw(`<br>`)
		b.Text(inv.Customer.Email)
		b.Raw(`<br>`)
		b.Text(inv.Customer.Phone)
		for _, line := range inv.Customer.Address {
			b.Raw(`<br>`)
			b.Text(line)
		}
		b.Raw(`</address></section>`)

		b.Raw(`<table class="w-full text-sm"><thead><tr class="border-b text-left">`)
		b.Raw(`<th class="py-2">Item</th><th class="py-2 text-right">Qty</th><th class="py-2 text-right">Unit price</th><th class="py-2 text-right">Total</th>`)
		b.Raw(`</tr></thead><tbody>`)
		if len(inv.Lines) == 0 {
			b.Raw(`<tr><td class="py-2 text-gray-500" colspan="4">No items</td></tr>`)
		}
		for _, line := range inv.Lines {
			b.Raw(`<tr class="border-b">`)
			b.Raw(`<td class="py-2">`)
			b.Text(line.Name)
			b.Raw(`</td>`)
			b.Raw(`<td class="py-2 text-right">`, strconv.Itoa(line.Quantity), `</td>`)
			b.Raw(`<td class="py-2 text-right">`)
			b.Text(line.UnitPrice)
			b.Raw(`</td>`)
			b.Raw(`<td class="py-2 text-right">`)
			b.Text(line.Total)
			b.Raw(`</td>`)
			b.Raw(`</tr>`)
		}
		b.Raw(`</tbody><tfoot>`)
		b.Raw(`<tr><td class="pt-4 text-right" colspan="3">Subtotal</td><td class="pt-4 text-right">`)
		b.Text(inv.Subtotal)
		b.Raw(`</td></tr>`)
		b.Raw(`<tr><td class="text-right font-bold" colspan="3">Total</td><td class="text-right font-bold">`)
		b.Text(inv.Total)
		b.Raw(`</td></tr>`)
		b.Raw(`</tfoot></table>`)

		if inv.IsCancelled() {
			b.Raw(`<section class="mt-6 rounded border border-red-200 bg-red-50 p-4 text-sm"><h2 class="font-semibold text-red-800">Cancelled</h2><dl class="grid grid-cols-2 gap-2">`)
			writeTerm(b, "Cancelled at", inv.CancelledAt)
			writeTerm(b, "Reason", inv.CancellationReason)
			writeTerm(b, "Notes", inv.AdditionalNotes)
			b.Raw(`</dl></section>`)
		}

		b.Raw(`<footer class="mt-8 flex gap-3 print:hidden">`)
		b.Raw(`<button type="button" class="rounded bg-blue-600 px-4 py-2 text-white" data-action="print">Print invoice</button>`)
		if downloadURL != "" {
			b.Raw(`<a class="rounded border px-4 py-2" href="`)
			b.Text(downloadURL)
			b.Raw(`">Download as text</a>`)
		}
		b.Raw(`</footer></article>`)
		return nil
	})
}

func writeTerm(b *markup.Builder, term, value string) {
	b.Raw(`<div><dt class="text-gray-500">`)
	b.Text(term)
	b.Raw(`</dt><dd>`)
	b.Text(value)
	b.Raw(`</dd></div>`)
}
