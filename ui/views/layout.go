package views

import (
	"context"
	"strconv"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/gitshopapp/storefront/ui/markup"
)

type Link struct {
	Href  string
	Label string
}

// Page carries the chrome shared by every storefront page.
type Page struct {
	Title       string
	ShopName    string
	CartCount   int
	Active      string
	Flash       string
	Error       string
	FooterLinks []Link
}

var navLinks = []struct {
	key   string
	href  string
	label string
}{
	{key: "products", href: "/", label: "Shop"},
	{key: "orders", href: "/orders", label: "My orders"},
	{key: "downloads", href: "/downloads", label: "Downloads"},
	{key: "faq", href: "/faq", label: "FAQ"},
	{key: "support", href: "/support", label: "Support"},
}

const navLinkBase = "px-3 py-2 text-sm text-gray-700 hover:text-gray-900"

func navLinkClass(active bool) string {
	if active {
		return twmerge.Merge(navLinkBase, "font-semibold text-gray-900 underline")
	}
	return navLinkBase
}

func pageTitle(page Page) string {
	switch {
	case page.Title == "":
		return page.ShopName
	case page.ShopName == "":
		return page.Title
	default:
		return page.Title + " | " + page.ShopName
	}
}

// Layout wraps body in the storefront document.
func Layout(page Page, body templ.Component) templ.Component {
	return markup.Component(func(ctx context.Context, b *markup.Builder) error {
		b.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.Raw(`<link rel="icon" href="/assets/img/favicon.svg"><title>`)
		b.Text(pageTitle(page))
		b.Raw(`</title><link rel="stylesheet" href="/assets/css/app.css">`)
		b.Raw(`<script src="/assets/js/app.js" defer></script></head>`)
		b.Raw(`<body class="min-h-screen bg-gray-50 text-gray-900">`)

		b.Raw(`<header class="border-b bg-white print:hidden"><nav class="mx-auto flex max-w-5xl items-center gap-2 p-4">`)
		b.Raw(`<a href="/" class="mr-auto text-lg font-bold">`)
		b.Text(page.ShopName)
		b.Raw(`</a>`)
		for _, link := range navLinks {
			b.Raw(`<a class="`, templ.EscapeString(navLinkClass(page.Active == link.key)), `" href="`, link.href, `">`)
			b.Text(link.label)
			b.Raw(`</a>`)
		}
		b.Raw(`<a class="`, templ.EscapeString(navLinkClass(page.Active == "cart")), `" href="/cart">Cart (`, strconv.Itoa(page.CartCount), `)</a>`)
		b.Raw(`</nav></header>`)

		b.Raw(`<main class="mx-auto max-w-5xl p-4">`)
		if page.Flash != "" {
			b.Raw(`<p class="mb-4 rounded bg-green-50 p-3 text-sm text-green-800" role="status">`)
			b.Text(page.Flash)
			b.Raw(`</p>`)
		}
		if page.Error != "" {
			b.Raw(`<p class="mb-4 rounded bg-red-50 p-3 text-sm text-red-800" role="alert">`)
			b.Text(page.Error)
			b.Raw(`</p>`)
		}
		if body != nil {
			if err := body.Render(ctx, b); err != nil {
				return err
			}
		}
		b.Raw(`</main>`)

		b.Raw(`<footer class="mx-auto max-w-5xl p-4 text-sm text-gray-500 print:hidden">`)
		for _, link := range page.FooterLinks {
			b.Raw(`<a class="mr-4" href="`, templ.EscapeString(link.Href), `">`)
			b.Text(link.Label)
			b.Raw(`</a>`)
		}
		b.Raw(`</footer></body></html>`)
		return nil
	})
}
