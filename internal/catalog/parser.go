package catalog

// Package catalog provides storefront.yaml parsing functionality.

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type StorefrontConfig struct {
	Shop      ShopConfig       `yaml:"shop"`
	Products  []ProductConfig  `yaml:"products"`
	Pages     []PageConfig     `yaml:"pages"`
	FAQ       []FAQEntry       `yaml:"faq"`
	Support   SupportConfig    `yaml:"support"`
	Downloads []DownloadConfig `yaml:"downloads"`
}

type ShopConfig struct {
	Name         string         `yaml:"name"`
	Currency     string         `yaml:"currency"`
	SupportEmail string         `yaml:"support_email"`
	Shipping     ShippingConfig `yaml:"shipping"`
}

type ShippingConfig struct {
	FlatRateCents int    `yaml:"flat_rate_cents"`
	Carrier       string `yaml:"carrier"`
}

type ProductConfig struct {
	SKU            string `yaml:"sku"`
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Category       string `yaml:"category"`
	UnitPriceCents int    `yaml:"unit_price_cents"`
	MaxQuantity    int    `yaml:"max_quantity"`
	Active         bool   `yaml:"active"`
}

// PageConfig is a static page such as terms, privacy or refund policy.
type PageConfig struct {
	Slug       string   `yaml:"slug"`
	Title      string   `yaml:"title"`
	Paragraphs []string `yaml:"paragraphs"`
}

type FAQEntry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type SupportConfig struct {
	Greeting  string        `yaml:"greeting"`
	Fallback  string        `yaml:"fallback"`
	Responses []CannedReply `yaml:"responses"`
}

type CannedReply struct {
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

// DownloadConfig is a file shoppers can fetch. Path is relative to the blob root.
type DownloadConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Path        string `yaml:"path"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*StorefrontConfig, error) {
	var config StorefrontConfig
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &config, nil
}

func (p *Parser) ParseFromString(content string) (*StorefrontConfig, error) {
	return p.Parse([]byte(content))
}

func (c *StorefrontConfig) Product(sku string) (*ProductConfig, bool) {
	for i := range c.Products {
		if c.Products[i].SKU == sku {
			return &c.Products[i], true
		}
	}
	return nil, false
}

func (c *StorefrontConfig) ActiveProducts() []ProductConfig {
	active := make([]ProductConfig, 0, len(c.Products))
	for _, product := range c.Products {
		if product.Active {
			active = append(active, product)
		}
	}
	return active
}

func (c *StorefrontConfig) Page(slug string) (*PageConfig, bool) {
	for i := range c.Pages {
		if c.Pages[i].Slug == slug {
			return &c.Pages[i], true
		}
	}
	return nil, false
}

func (c *StorefrontConfig) Download(id string) (*DownloadConfig, bool) {
	for i := range c.Downloads {
		if c.Downloads[i].ID == id {
			return &c.Downloads[i], true
		}
	}
	return nil, false
}

// CurrencySymbol maps the shop currency code to its display symbol.
func (s ShopConfig) CurrencySymbol() string {
	switch strings.ToLower(strings.TrimSpace(s.Currency)) {
	case "", "usd", "cad", "aud":
		return "$"
	case "eur":
		return "€"
	case "gbp":
		return "£"
	case "jpy":
		return "¥"
	default:
		return strings.ToUpper(s.Currency) + " "
	}
}
