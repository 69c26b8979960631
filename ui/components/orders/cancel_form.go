// Package orders renders order-specific fragments used by the order pages.
package orders

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	lifecycle "github.com/gitshopapp/storefront/internal/orders"
	"github.com/gitshopapp/storefront/ui/markup"
)

type CancelFormProps struct {
	// OrderRef is the document id used in the form action.
	OrderRef string
	Reasons  []string
	Selected string
	Notes    string
	Error    string
}

type reasonOption struct {
	Value    string
	Selected bool
}

func reasonOptions(reasons []string, selected string) []reasonOption {
	options := make([]reasonOption, 0, len(reasons))
	for _, reason := range reasons {
		options = append(options, reasonOption{Value: reason, Selected: reason == selected})
	}
	return options
}

// CancelForm renders the reason select and notes field for a cancellable order.
func CancelForm(props CancelFormProps) templ.Component {
	return markup.Component(func(_ context.Context, b *markup.Builder) error {
		b.Raw(`<form method="post" action="/orders/`)
		b.Text(props.OrderRef)
		b.Raw(`/cancel" class="mt-6 space-y-4 rounded border p-4" id="cancel-order">`)
		b.Raw(`<h2 class="font-semibold">Cancel this order</h2>`)
		if props.Error != "" {
			b.Raw(`<p class="rounded bg-red-50 p-2 text-sm text-red-700" role="alert">`)
			b.Text(props.Error)
			b.Raw(`</p>`)
		}
		b.Raw(`<label class="block text-sm" for="reason">Reason</label>`)
		b.Raw(`<select id="reason" name="reason" required class="w-full rounded border p-2">`)
		b.Raw(`<option value="">Select a reason</option>`)
		for _, option := range reasonOptions(props.Reasons, props.Selected) {
			b.Raw(`<option value="`)
			b.Text(option.Value)
			if option.Selected {
				b.Raw(`" selected>`)
			} else {
				b.Raw(`">`)
			}
			b.Text(option.Value)
			b.Raw(`</option>`)
		}
		b.Raw(`</select>`)
		b.Raw(`<label class="block text-sm" for="notes">Additional notes</label>`)
		b.Raw(`<textarea id="notes" name="notes" rows="3" maxlength="`, strconv.Itoa(lifecycle.MaxNotesLength), `" class="w-full rounded border p-2">`)
		b.Text(props.Notes)
		b.Raw(`</textarea>`)
		b.Raw(`<button type="submit" class="rounded bg-red-600 px-4 py-2 text-white">Cancel order</button>`)
		b.Raw(`</form>`)
		return nil
	})
}

// MaskPaymentID shortens a payment id to its last four characters for list views.
func MaskPaymentID(value string) string {
	runes := []rune(value)
	if len(runes) <= 4 {
		return value
	}
	return "••••" + string(runes[len(runes)-4:])
}
