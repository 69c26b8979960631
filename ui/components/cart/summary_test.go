package cart

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gitshopapp/storefront/internal/catalog"
)

func TestFromQuote(t *testing.T) {
	t.Parallel()

	quote := &catalog.Quote{
		Lines: []catalog.QuoteLine{
			{Product: catalog.ProductConfig{SKU: "MUG_V1", Name: "Enamel Mug", UnitPriceCents: 1800}, Quantity: 2, TotalCents: 3600},
		},
		SubtotalCents: 3600,
		ShippingCents: 500,
		TotalCents:    4100,
	}

	props := FromQuote(quote, "$")
	if len(props.Lines) != 1 {
		t.Fatalf("len(Lines) = %d, want 1", len(props.Lines))
	}
	if props.Lines[0].UnitPrice != "$18.00" || props.Lines[0].Total != "$36.00" {
		t.Fatalf("unexpected line: %+v", props.Lines[0])
	}
	if props.Total != "$41.00" {
		t.Fatalf("Total = %q, want $41.00", props.Total)
	}
	if got := FromQuote(nil, "$"); len(got.Lines) != 0 {
		t.Fatalf("expected empty props for nil quote, got %+v", got)
	}
}

func TestItemCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []Line
		want  int
	}{
		{name: "empty", lines: nil, want: 0},
		{name: "sums quantities", lines: []Line{{Quantity: 2}, {Quantity: 3}}, want: 5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := itemCount(tt.lines); got != tt.want {
				t.Fatalf("itemCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSummary_EscapesAndShowsRemove(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Summary(SummaryProps{
		Lines:    []Line{{SKU: "A<1>", Name: "<b>Mug</b>", Quantity: 1, UnitPrice: "$1.00", Total: "$1.00"}},
		Editable: true,
	}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<b>Mug</b>") {
		t.Fatalf("expected product name to be escaped: %s", out)
	}
	if !strings.Contains(out, `action="/cart/remove"`) {
		t.Fatalf("expected remove form: %s", out)
	}
}
