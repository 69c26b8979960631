package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/gitshopapp/storefront/internal/invoice"
	"github.com/gitshopapp/storefront/internal/models"
	ordercomponents "github.com/gitshopapp/storefront/ui/components/orders"
	"github.com/gitshopapp/storefront/ui/markup"
)

type OrderRow struct {
	ID          string
	OrderID     string
	PaymentID   string
	Status      models.OrderStatus
	StatusLabel string
	Total       string
	PlacedAt    string
}

type OrdersPageProps struct {
	Page   Page
	Orders []OrderRow
}

func OrdersPage(props OrdersPageProps) templ.Component {
	props.Page.Active = "orders"
	return Layout(props.Page, markup.Component(func(ctx context.Context, b *markup.Builder) error {
		b.Raw(`<h1 class="mb-6 text-2xl font-bold">My orders</h1>`)
		if len(props.Orders) == 0 {
			b.Raw(`<p class="text-gray-500">You have not placed any orders yet.</p>`)
			return nil
		}
		b.Raw(`<table class="w-full bg-white text-sm"><thead><tr class="border-b text-left">`)
		b.Raw(`<th class="p-2">Order</th><th class="p-2">Placed</th><th class="p-2">Payment</th><th class="p-2">Status</th><th class="p-2 text-right">Total</th>`)
		b.Raw(`</tr></thead><tbody>`)
		for _, row := range props.Orders {
			b.Raw(`<tr class="border-b"><td class="p-2"><a class="underline" href="/orders/`, templ.EscapeString(row.ID), `">`)
			b.Text(row.OrderID)
			b.Raw(`</a></td><td class="p-2">`)
			b.Text(row.PlacedAt)
			b.Raw(`</td><td class="p-2 font-mono">`)
			b.Text(ordercomponents.MaskPaymentID(row.PaymentID))
			b.Raw(`</td><td class="p-2"><span class="`, templ.EscapeString(invoice.BadgeClass(row.Status)), `">`)
			b.Text(row.StatusLabel)
			b.Raw(`</span></td><td class="p-2 text-right">`)
			b.Text(row.Total)
			b.Raw(`</td></tr>`)
		}
		b.Raw(`</tbody></table>`)
		return nil
	}))
}

type OrderDetailPageProps struct {
	Page    Page
	Order   *models.Order
	Invoice *invoice.Invoice
	Cancel  ordercomponents.CancelFormProps
}

func OrderDetailPage(props OrderDetailPageProps) templ.Component {
	props.Page.Active = "orders"
	return Layout(props.Page, markup.Component(func(ctx context.Context, b *markup.Builder) error {
		order := props.Order
		if order == nil || props.Invoice == nil {
			b.Raw(`<p>Order not found.</p>`)
			return nil
		}
		b.Raw(`<nav class="mb-4 text-sm print:hidden"><a class="underline" href="/orders">Back to orders</a>`)
		b.Raw(` · <a class="underline" href="/orders/`, templ.EscapeString(order.ID), `/invoice">Invoice</a></nav>`)

		if err := invoice.Component(props.Invoice, "/orders/"+order.ID+"/invoice.txt").Render(ctx, b); err != nil {
			return err
		}

		if order.CanCancel() {
			cancel := props.Cancel
			cancel.OrderRef = order.ID
			return ordercomponents.CancelForm(cancel).Render(ctx, b)
		}
		return nil
	}))
}

type InvoicePageProps struct {
	Page        Page
	Invoice     *invoice.Invoice
	DownloadURL string
}

func InvoicePage(props InvoicePageProps) templ.Component {
	props.Page.Active = "orders"
	return Layout(props.Page, invoice.Component(props.Invoice, props.DownloadURL))
}
