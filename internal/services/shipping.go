package services

import (
	"fmt"
	"strings"
)

// NormalizeCarrierName maps known carrier spellings to their display name and
// keeps custom carriers untouched. An empty carrier is shown as "Standard".
func NormalizeCarrierName(carrier string) string {
	trimmed := strings.TrimSpace(carrier)
	if trimmed == "" {
		return "Standard"
	}

	normalized := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(trimmed))
	switch normalized {
	case "usps", "unitedstatespostalservice":
		return "USPS"
	case "fedex", "federalexpress":
		return "FedEx"
	case "ups", "unitedparcelservice":
		return "UPS"
	case "dhl", "dhlexpress":
		return "DHL"
	default:
		return trimmed
	}
}

// ShippingSummary describes the flat shipping rate shown in the cart.
func ShippingSummary(carrier string, cents int) string {
	if cents <= 0 {
		return "Free shipping"
	}
	return fmt.Sprintf("%s shipping", NormalizeCarrierName(carrier))
}
