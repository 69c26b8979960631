package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/ui/markup"
)

type ContentPageProps struct {
	Page    Page
	Content *catalog.PageConfig
}

func ContentPage(props ContentPageProps) templ.Component {
	return Layout(props.Page, markup.Component(func(ctx context.Context, b *markup.Builder) error {
		if props.Content == nil {
			return nil
		}
		b.Raw(`<article class="prose max-w-3xl"><h1 class="mb-4 text-2xl font-bold">`)
		b.Text(props.Content.Title)
		b.Raw(`</h1>`)
		for _, paragraph := range props.Content.Paragraphs {
			b.Raw(`<p class="mb-3">`)
			b.Text(paragraph)
			b.Raw(`</p>`)
		}
		b.Raw(`</article>`)
		return nil
	}))
}

type FAQPageProps struct {
	Page    Page
	Entries []catalog.FAQEntry
}

func FAQPage(props FAQPageProps) templ.Component {
	props.Page.Active = "faq"
	return Layout(props.Page, markup.Component(func(ctx context.Context, b *markup.Builder) error {
		b.Raw(`<h1 class="mb-6 text-2xl font-bold">Frequently asked questions</h1><dl class="space-y-4">`)
		for _, entry := range props.Entries {
			b.Raw(`<div><dt class="font-semibold">`)
			b.Text(entry.Question)
			b.Raw(`</dt><dd class="text-gray-700">`)
			b.Text(entry.Answer)
			b.Raw(`</dd></div>`)
		}
		b.Raw(`</dl>`)
		return nil
	}))
}

type SupportMessage struct {
	Question string
	Answer   string
}

type SupportPageProps struct {
	Page     Page
	Greeting string
	Messages []SupportMessage
}

func SupportPage(props SupportPageProps) templ.Component {
	props.Page.Active = "support"
	return Layout(props.Page, markup.Component(func(ctx context.Context, b *markup.Builder) error {
		b.Raw(`<h1 class="mb-6 text-2xl font-bold">Support</h1>`)
		b.Raw(`<ol class="space-y-3" id="support-chat"><li class="rounded bg-white p-3">`)
		b.Text(props.Greeting)
		b.Raw(`</li>`)
		for _, message := range props.Messages {
			b.Raw(`<li class="ml-auto max-w-md rounded bg-blue-50 p-3 text-right">`)
			b.Text(message.Question)
			b.Raw(`</li><li class="max-w-md rounded bg-white p-3">`)
			b.Text(message.Answer)
			b.Raw(`</li>`)
		}
		b.Raw(`</ol>`)
		b.Raw(`<form method="post" action="/support" class="mt-4 flex gap-2">`)
		b.Raw(`<input type="text" name="message" required maxlength="500" placeholder="Ask a question" class="flex-1 rounded border p-2">`)
		b.Raw(`<button type="submit" class="rounded bg-blue-600 px-4 py-2 text-white">Send</button></form>`)
		return nil
	}))
}

type DownloadRow struct {
	ID          string
	Name        string
	Description string
	Category    string
	Count       int
}

type DownloadsPageProps struct {
	Page       Page
	Items      []DownloadRow
	Categories []string
	Query      string
	Category   string
}

func DownloadsPage(props DownloadsPageProps) templ.Component {
	props.Page.Active = "downloads"
	return Layout(props.Page, markup.Component(func(ctx context.Context, b *markup.Builder) error {
		b.Raw(`<h1 class="mb-6 text-2xl font-bold">Downloads</h1>`)
		b.Raw(`<form method="get" action="/downloads" class="mb-4 flex gap-2">`)
		b.Raw(`<input type="search" name="q" value="`, templ.EscapeString(props.Query), `" placeholder="Search files" class="flex-1 rounded border p-2">`)
		b.Raw(`<select name="category" class="rounded border p-2"><option value="">All categories</option>`)
		for _, category := range props.Categories {
			b.Raw(`<option value="`, templ.EscapeString(category), `"`)
			if category == props.Category {
				b.Raw(` selected`)
			}
			b.Raw(`>`)
			b.Text(category)
			b.Raw(`</option>`)
		}
		b.Raw(`</select><button type="submit" class="rounded border px-4 py-2">Filter</button></form>`)

		if len(props.Items) == 0 {
			b.Raw(`<p class="text-gray-500">No files match your search.</p>`)
			return nil
		}
		b.Raw(`<ul class="space-y-3">`)
		for _, item := range props.Items {
			b.Raw(`<li class="flex items-center justify-between rounded border bg-white p-3"><div><p class="font-semibold">`)
			b.Text(item.Name)
			b.Raw(`</p><p class="text-sm text-gray-600">`)
			b.Text(item.Description)
			b.Raw(`</p><p class="text-xs text-gray-400">`)
			b.Text(item.Category)
			b.Raw(` · `, strconv.Itoa(item.Count), ` downloads</p></div>`)
			b.Raw(`<form method="post" action="/downloads/`, templ.EscapeString(item.ID), `/link">`)
			b.Raw(`<button type="submit" class="rounded bg-blue-600 px-3 py-1 text-white">Download</button></form></li>`)
		}
		b.Raw(`</ul>`)
		return nil
	}))
}
