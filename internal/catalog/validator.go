package catalog

// Package catalog provides configuration validation.

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

var (
	skuRegex  = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{0,63}$`)
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

func IsValidSKU(sku string) bool {
	return skuRegex.MatchString(sku)
}

func (v *Validator) Validate(config *StorefrontConfig) error {
	if config == nil {
		return fmt.Errorf("config is required")
	}
	if err := v.validateShop(&config.Shop); err != nil {
		return fmt.Errorf("shop validation failed: %w", err)
	}

	if len(config.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}

	skus := make(map[string]bool)
	for i, product := range config.Products {
		if err := v.validateProduct(&product); err != nil {
			return fmt.Errorf("product %d validation failed: %w", i, err)
		}

		if skus[product.SKU] {
			return fmt.Errorf("duplicate SKU: %s", product.SKU)
		}
		skus[product.SKU] = true
	}

	slugs := make(map[string]bool)
	for i, page := range config.Pages {
		if !slugRegex.MatchString(page.Slug) {
			return fmt.Errorf("page %d has invalid slug %q", i, page.Slug)
		}
		if strings.TrimSpace(page.Title) == "" {
			return fmt.Errorf("page %s title is required", page.Slug)
		}
		if slugs[page.Slug] {
			return fmt.Errorf("duplicate page slug: %s", page.Slug)
		}
		slugs[page.Slug] = true
	}

	for i, entry := range config.FAQ {
		if strings.TrimSpace(entry.Question) == "" || strings.TrimSpace(entry.Answer) == "" {
			return fmt.Errorf("faq entry %d needs a question and an answer", i)
		}
	}

	if err := v.validateSupport(&config.Support); err != nil {
		return fmt.Errorf("support validation failed: %w", err)
	}

	ids := make(map[string]bool)
	for i, download := range config.Downloads {
		if err := v.validateDownload(&download); err != nil {
			return fmt.Errorf("download %d validation failed: %w", i, err)
		}
		if ids[download.ID] {
			return fmt.Errorf("duplicate download id: %s", download.ID)
		}
		ids[download.ID] = true
	}

	return nil
}

func (v *Validator) validateShop(shop *ShopConfig) error {
	if strings.TrimSpace(shop.Name) == "" {
		return fmt.Errorf("shop name is required")
	}

	if shop.Currency != "usd" {
		return fmt.Errorf("only USD currency is supported")
	}

	if shop.Shipping.FlatRateCents < 0 {
		return fmt.Errorf("shipping flat rate must be zero or positive")
	}

	return nil
}

func (v *Validator) validateProduct(product *ProductConfig) error {
	if !IsValidSKU(product.SKU) {
		return fmt.Errorf("product SKU %q is invalid", product.SKU)
	}

	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("product name is required")
	}

	if product.UnitPriceCents <= 0 {
		return fmt.Errorf("product unit price must be positive")
	}

	if product.MaxQuantity < 0 {
		return fmt.Errorf("product max quantity must be zero or positive")
	}

	return nil
}

func (v *Validator) validateSupport(support *SupportConfig) error {
	for i, reply := range support.Responses {
		if len(reply.Keywords) == 0 {
			return fmt.Errorf("response %d needs at least one keyword", i)
		}
		if strings.TrimSpace(reply.Reply) == "" {
			return fmt.Errorf("response %d reply is required", i)
		}
	}
	return nil
}

func (v *Validator) validateDownload(download *DownloadConfig) error {
	if strings.TrimSpace(download.ID) == "" {
		return fmt.Errorf("download id is required")
	}
	if strings.TrimSpace(download.Name) == "" {
		return fmt.Errorf("download name is required")
	}
	cleaned := path.Clean(download.Path)
	if download.Path == "" || path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("download path must be relative to the blob root")
	}
	return nil
}
