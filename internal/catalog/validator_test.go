package catalog

import "testing"

func validStorefront() *StorefrontConfig {
	return &StorefrontConfig{
		Shop: ShopConfig{
			Name:     "Test Shop",
			Currency: "usd",
			Shipping: ShippingConfig{FlatRateCents: 500, Carrier: "USPS"},
		},
		Products: []ProductConfig{
			{SKU: "COFFEE_V1", Name: "Coffee", UnitPriceCents: 1500, Active: true},
		},
		Pages:     []PageConfig{{Slug: "terms", Title: "Terms"}},
		FAQ:       []FAQEntry{{Question: "Q?", Answer: "A."}},
		Support:   SupportConfig{Responses: []CannedReply{{Keywords: []string{"refund"}, Reply: "Soon."}}},
		Downloads: []DownloadConfig{{ID: "guide", Name: "Guide", Path: "guides/guide.txt"}},
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*StorefrontConfig)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*StorefrontConfig) {}},
		{name: "unsupported currency", mutate: func(c *StorefrontConfig) { c.Shop.Currency = "eur" }, wantErr: true},
		{name: "no products", mutate: func(c *StorefrontConfig) { c.Products = nil }, wantErr: true},
		{name: "lowercase sku", mutate: func(c *StorefrontConfig) { c.Products[0].SKU = "coffee" }, wantErr: true},
		{name: "duplicate sku", mutate: func(c *StorefrontConfig) { c.Products = append(c.Products, c.Products[0]) }, wantErr: true},
		{name: "zero price", mutate: func(c *StorefrontConfig) { c.Products[0].UnitPriceCents = 0 }, wantErr: true},
		{name: "bad page slug", mutate: func(c *StorefrontConfig) { c.Pages[0].Slug = "Terms Page" }, wantErr: true},
		{name: "faq without answer", mutate: func(c *StorefrontConfig) { c.FAQ[0].Answer = "" }, wantErr: true},
		{name: "support reply without keywords", mutate: func(c *StorefrontConfig) { c.Support.Responses[0].Keywords = nil }, wantErr: true},
		{name: "download escapes blob root", mutate: func(c *StorefrontConfig) { c.Downloads[0].Path = "../secrets.txt" }, wantErr: true},
		{name: "absolute download path", mutate: func(c *StorefrontConfig) { c.Downloads[0].Path = "/etc/passwd" }, wantErr: true},
	}

	validator := NewValidator()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			config := validStorefront()
			tc.mutate(config)
			err := validator.Validate(config)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}
