package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/invoice"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/ui/components/cart"
	"github.com/gitshopapp/storefront/ui/markup"
)

type ProductsPageProps struct {
	Page           Page
	Products       []catalog.ProductConfig
	CurrencySymbol string
}

func ProductsPage(props ProductsPageProps) templ.Component {
	props.Page.Active = "products"
	return Layout(props.Page, markup.Component(func(ctx context.Context, b *markup.Builder) error {
		b.Raw(`<h1 class="mb-6 text-2xl font-bold">Products</h1>`)
		if len(props.Products) == 0 {
			b.Raw(`<p class="text-gray-500">Nothing for sale right now.</p>`)
			return nil
		}
		b.Raw(`<ul class="grid gap-4 sm:grid-cols-2 lg:grid-cols-3">`)
		for _, product := range props.Products {
			b.Raw(`<li class="rounded border bg-white p-4" id="product-`, templ.EscapeString(product.SKU), `">`)
			b.Raw(`<h2 class="font-semibold">`)
			b.Text(product.Name)
			b.Raw(`</h2><p class="text-sm text-gray-600">`)
			b.Text(product.Description)
			b.Raw(`</p><p class="mt-2 font-bold">`)
			b.Text(cart.FormatCents(product.UnitPriceCents, props.CurrencySymbol))
			b.Raw(`</p>`)
			b.Raw(`<form method="post" action="/cart/add" class="mt-3 flex gap-2">`)
			b.Raw(`<input type="hidden" name="sku" value="`, templ.EscapeString(product.SKU), `">`)
			b.Raw(`<input type="number" name="quantity" value="1" min="1"`)
			if product.MaxQuantity > 0 {
				b.Raw(` max="`, strconv.Itoa(product.MaxQuantity), `"`)
			}
			b.Raw(` class="w-20 rounded border p-1">`)
			b.Raw(`<button type="submit" class="rounded bg-blue-600 px-3 py-1 text-white">Add to cart</button></form></li>`)
		}
		b.Raw(`</ul>`)
		return nil
	}))
}

type CartPageProps struct {
	Page Page
	// Summary is nil for an empty cart.
	Summary *cart.SummaryProps
	Offline bool
}

func CartPage(props CartPageProps) templ.Component {
	props.Page.Active = "cart"
	return Layout(props.Page, markup.Component(func(ctx context.Context, b *markup.Builder) error {
		b.Raw(`<h1 class="mb-6 text-2xl font-bold">Your cart</h1>`)
		if props.Summary == nil || len(props.Summary.Lines) == 0 {
			b.Raw(`<p class="text-gray-500">Your cart is empty. <a class="underline" href="/">Browse products</a>.</p>`)
			return nil
		}
		if err := cart.Summary(*props.Summary).Render(ctx, b); err != nil {
			return err
		}
		b.Raw(`<form method="post" action="/checkout" class="mt-6">`)
		b.Raw(`<button type="submit" class="rounded bg-blue-600 px-4 py-2 text-white">Checkout</button></form>`)
		if props.Offline {
			b.Raw(`<p class="mt-2 text-xs text-amber-700">Payments are disabled on this storefront. Orders are confirmed without charging a card.</p>`)
		}
		return nil
	}))
}

type ConfirmationPageProps struct {
	Page    Page
	Order   *models.Order
	Invoice *invoice.Invoice
	// RetryURL is set when the order could not be saved and the shopper may try again.
	RetryURL string
}

func ConfirmationPage(props ConfirmationPageProps) templ.Component {
	return Layout(props.Page, markup.Component(func(ctx context.Context, b *markup.Builder) error {
		order := props.Order
		if order == nil || props.Invoice == nil {
			b.Raw(`<p>No order to show.</p>`)
			return nil
		}

		if order.Status == models.StatusUnsaved {
			b.Raw(`<section class="mb-6 rounded border border-amber-200 bg-amber-50 p-4" id="order-unsaved">`)
			b.Raw(`<h1 class="text-xl font-bold text-amber-900">Your payment went through, but your order is not saved yet</h1>`)
			b.Raw(`<p class="mt-2 text-sm">We could not record order `)
			b.Text(order.OrderID)
			b.Raw(` right now. Nothing was charged twice. Please try again in a moment.</p>`)
			if props.RetryURL != "" {
				b.Raw(`<a class="mt-3 inline-block rounded bg-amber-600 px-4 py-2 text-white" href="`, templ.EscapeString(props.RetryURL), `">Try again</a>`)
			}
			b.Raw(`</section>`)
			return invoice.Component(props.Invoice, "").Render(ctx, b)
		}

		b.Raw(`<section class="mb-6 rounded border border-green-200 bg-green-50 p-4" id="order-confirmed">`)
		b.Raw(`<h1 class="text-xl font-bold text-green-900">Thank you for your order</h1>`)
		b.Raw(`<p class="mt-2 text-sm">Order `)
		b.Text(order.OrderID)
		b.Raw(` is confirmed. <a class="underline" href="/orders/`, templ.EscapeString(order.ID), `">View order</a></p>`)
		b.Raw(`</section>`)
		return invoice.Component(props.Invoice, "/orders/"+order.ID+"/invoice.txt").Render(ctx, b)
	}))
}
