package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/invoice"
	"github.com/gitshopapp/storefront/internal/models"
	ordercomponents "github.com/gitshopapp/storefront/ui/components/orders"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func testOrder(status models.OrderStatus) *models.Order {
	return &models.Order{
		ID:        "doc-1",
		OrderID:   "ORD-123456",
		PaymentID: "pi_abcdef123456",
		Amount:    decimal.RequireFromString("30.00"),
		Items:     []models.LineItem{{Name: "Logo T-Shirt", Price: decimal.RequireFromString("25.00"), Quantity: 1}},
		Status:    status,
		CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func testInvoice(t *testing.T, order *models.Order) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.Build(order, invoice.Options{ShopName: "Storefront"})
	if err != nil {
		t.Fatalf("build invoice: %v", err)
	}
	return inv
}

func TestPageTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page Page
		want string
	}{
		{name: "title and shop", page: Page{Title: "Cart", ShopName: "Storefront"}, want: "Cart | Storefront"},
		{name: "shop only", page: Page{ShopName: "Storefront"}, want: "Storefront"},
		{name: "title only", page: Page{Title: "Cart"}, want: "Cart"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := pageTitle(tt.page); got != tt.want {
				t.Fatalf("pageTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLayout_ShowsFlashAndCartCount(t *testing.T) {
	t.Parallel()

	out := render(t, Layout(Page{ShopName: "Storefront", CartCount: 3, Flash: "Added <Mug>"}, nil))
	if !strings.Contains(out, "Cart (3)") {
		t.Fatalf("expected cart count in nav: %s", out)
	}
	if !strings.Contains(out, "Added &lt;Mug&gt;") {
		t.Fatalf("expected escaped flash: %s", out)
	}
}

func TestProductsPage(t *testing.T) {
	t.Parallel()

	out := render(t, ProductsPage(ProductsPageProps{
		Products:       []catalog.ProductConfig{{SKU: "MUG_V1", Name: "Enamel Mug", UnitPriceCents: 1800, MaxQuantity: 4}},
		CurrencySymbol: "$",
	}))
	for _, want := range []string{"Enamel Mug", "$18.00", `value="MUG_V1"`, `max="4"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}

func TestConfirmationPage(t *testing.T) {
	t.Parallel()

	t.Run("saved order links to the order", func(t *testing.T) {
		t.Parallel()
		order := testOrder(models.StatusSuccess)
		out := render(t, ConfirmationPage(ConfirmationPageProps{Order: order, Invoice: testInvoice(t, order)}))
		if !strings.Contains(out, `id="order-confirmed"`) || !strings.Contains(out, `href="/orders/doc-1"`) {
			t.Fatalf("expected confirmation block: %s", out)
		}
	})

	t.Run("unsaved order offers retry", func(t *testing.T) {
		t.Parallel()
		order := testOrder(models.StatusUnsaved)
		order.ID = ""
		out := render(t, ConfirmationPage(ConfirmationPageProps{
			Order:    order,
			Invoice:  testInvoice(t, order),
			RetryURL: "/checkout/success?session_id=cs_1",
		}))
		if !strings.Contains(out, `id="order-unsaved"`) {
			t.Fatalf("expected unsaved block: %s", out)
		}
		if !strings.Contains(out, `href="/checkout/success?session_id=cs_1"`) {
			t.Fatalf("expected retry link: %s", out)
		}
		if strings.Contains(out, "Download as text") {
			t.Fatalf("unsaved order must not offer an invoice download")
		}
	})
}

func TestOrderDetailPage_CancelFormOnlyForCancellableOrders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     models.OrderStatus
		wantCancel bool
	}{
		{name: "paid order", status: models.StatusSuccess, wantCancel: true},
		{name: "cancelled order", status: models.StatusCancelled, wantCancel: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			order := testOrder(tt.status)
			out := render(t, OrderDetailPage(OrderDetailPageProps{
				Order:   order,
				Invoice: testInvoice(t, order),
				Cancel:  ordercomponents.CancelFormProps{Reasons: []string{"Changed my mind"}},
			}))
			if got := strings.Contains(out, `id="cancel-order"`); got != tt.wantCancel {
				t.Fatalf("cancel form shown = %v, want %v", got, tt.wantCancel)
			}
		})
	}
}

func TestDownloadsPage_SelectsCategory(t *testing.T) {
	t.Parallel()

	out := render(t, DownloadsPage(DownloadsPageProps{
		Items:      []DownloadRow{{ID: "size-guide", Name: "Size Guide", Category: "guides", Count: 7}},
		Categories: []string{"guides", "media"},
		Category:   "guides",
		Query:      "size",
	}))
	for _, want := range []string{`<option value="guides" selected>`, `action="/downloads/size-guide/link"`, "7 downloads", `value="size"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSupportPage(t *testing.T) {
	t.Parallel()

	out := render(t, SupportPage(SupportPageProps{
		Greeting: "Hi!",
		Messages: []SupportMessage{{Question: "refund?", Answer: "Refunds take 5 days."}},
	}))
	if !strings.Contains(out, "Hi!") || !strings.Contains(out, "Refunds take 5 days.") {
		t.Fatalf("unexpected support page: %s", out)
	}
}

func TestNotFoundPage(t *testing.T) {
	t.Parallel()

	out := render(t, NotFoundPage())
	if !strings.Contains(out, "Page not found") {
		t.Fatalf("unexpected not found page: %s", out)
	}
}
