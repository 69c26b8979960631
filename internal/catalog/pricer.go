package catalog

// Package catalog provides price calculation functionality.

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const defaultMaxQuantity = 10

type Pricer struct{}

func NewPricer() *Pricer {
	return &Pricer{}
}

type CartLine struct {
	SKU      string
	Quantity int
}

type QuoteLine struct {
	Product    ProductConfig
	Quantity   int
	TotalCents int
}

type Quote struct {
	Lines         []QuoteLine
	SubtotalCents int
	ShippingCents int
	TotalCents    int
}

func (p *Pricer) ComputeSubtotal(config *StorefrontConfig, sku string, quantity int) (int, error) {
	product, ok := config.Product(sku)
	if !ok {
		return 0, fmt.Errorf("product with SKU %s not found", sku)
	}

	if !product.Active {
		return 0, fmt.Errorf("product with SKU %s is not active", sku)
	}

	quantity = normalizeQuantity(quantity)
	if limit := maxQuantity(product); quantity > limit {
		return 0, fmt.Errorf("quantity for %s cannot exceed %d", sku, limit)
	}
	return product.UnitPriceCents * quantity, nil
}

// Quote prices every cart line and adds flat-rate shipping once.
func (p *Pricer) Quote(config *StorefrontConfig, lines []CartLine) (*Quote, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	quote := &Quote{}
	for _, line := range lines {
		total, err := p.ComputeSubtotal(config, line.SKU, line.Quantity)
		if err != nil {
			return nil, err
		}
		product, _ := config.Product(line.SKU)
		quote.Lines = append(quote.Lines, QuoteLine{
			Product:    *product,
			Quantity:   normalizeQuantity(line.Quantity),
			TotalCents: total,
		})
		quote.SubtotalCents += total
	}
	quote.ShippingCents = p.GetShippingCents(config)
	quote.TotalCents = quote.SubtotalCents + quote.ShippingCents
	return quote, nil
}

func (p *Pricer) GetShippingCents(config *StorefrontConfig) int {
	return config.Shop.Shipping.FlatRateCents
}

// CentsToDecimal converts an integer cent amount into a decimal currency value.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func normalizeQuantity(quantity int) int {
	if quantity <= 0 {
		return 1
	}
	return quantity
}

func maxQuantity(product *ProductConfig) int {
	if product.MaxQuantity > 0 {
		return product.MaxQuantity
	}
	return defaultMaxQuantity
}
