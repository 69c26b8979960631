package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/gitshopapp/storefront/ui/markup"
)

func NotFoundPage() templ.Component {
	return ErrorPage(ErrorPageProps{
		Page:    Page{Title: "Not found"},
		Title:   "Page not found",
		Message: "The page you are looking for does not exist.",
	})
}

type ErrorPageProps struct {
	Page    Page
	Title   string
	Message string
	// RetryURL renders a try-again link when set.
	RetryURL string
}

func ErrorPage(props ErrorPageProps) templ.Component {
	return Layout(props.Page, markup.Component(func(ctx context.Context, b *markup.Builder) error {
		b.Raw(`<section class="rounded border bg-white p-6 text-center"><h1 class="text-xl font-bold">`)
		b.Text(props.Title)
		b.Raw(`</h1><p class="mt-2 text-gray-600">`)
		b.Text(props.Message)
		b.Raw(`</p>`)
		if props.RetryURL != "" {
			b.Raw(`<a class="mt-4 inline-block rounded bg-blue-600 px-4 py-2 text-white" href="`, templ.EscapeString(props.RetryURL), `">Try again</a>`)
		}
		b.Raw(`<p class="mt-4"><a class="underline" href="/">Back to the shop</a></p></section>`)
		return nil
	}))
}
