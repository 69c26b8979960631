package catalog

import (
	"testing"
)

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "valid config",
			yaml: `
shop:
  name: "Test Shop"
  currency: "usd"
  shipping:
    flat_rate_cents: 900
    carrier: "USPS"
products:
  - sku: "TEST_V1"
    name: "Test Product"
    description: "A test product"
    unit_price_cents: 1000
    active: true
pages:
  - slug: "terms"
    title: "Terms"
    paragraphs: ["Be nice."]
support:
  fallback: "Email us."
  responses:
    - keywords: ["refund"]
      reply: "Refunds take a week."
downloads:
  - id: "guide"
    name: "Guide"
    path: "guides/guide.txt"
`,
			wantErr: false,
		},
		{
			name:    "invalid yaml",
			yaml:    "invalid: yaml: content:",
			wantErr: true,
		},
	}

	parser := NewParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := parser.ParseFromString(tt.yaml)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if config.Shop.Name != "Test Shop" {
				t.Errorf("expected shop name 'Test Shop', got '%s'", config.Shop.Name)
			}
			if _, ok := config.Product("TEST_V1"); !ok {
				t.Error("expected TEST_V1 product")
			}
			if page, ok := config.Page("terms"); !ok || len(page.Paragraphs) != 1 {
				t.Errorf("unexpected terms page: %+v", page)
			}
			if download, ok := config.Download("guide"); !ok || download.Path != "guides/guide.txt" {
				t.Errorf("unexpected download: %+v", download)
			}
			if len(config.Support.Responses) != 1 {
				t.Errorf("expected 1 support response, got %d", len(config.Support.Responses))
			}
		})
	}
}

func TestStorefrontConfig_ActiveProducts(t *testing.T) {
	t.Parallel()

	config := &StorefrontConfig{Products: []ProductConfig{
		{SKU: "A", Active: true},
		{SKU: "B", Active: false},
		{SKU: "C", Active: true},
	}}
	active := config.ActiveProducts()
	if len(active) != 2 || active[0].SKU != "A" || active[1].SKU != "C" {
		t.Fatalf("unexpected active products: %+v", active)
	}
}
