// Package stripe wraps Stripe Checkout and webhook validation.
package stripe

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/models"
)

// Client creates and reads Checkout Sessions.
type Client struct {
	client *stripeapi.Client
}

// NewClient builds a Checkout client. A nil httpClient uses the library default.
func NewClient(secretKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		return &Client{client: stripeapi.NewClient(secretKey)}
	}
	backends := stripeapi.NewBackendsWithConfig(&stripeapi.BackendConfig{HTTPClient: httpClient})
	return &Client{client: stripeapi.NewClient(secretKey, stripeapi.WithBackends(backends))}
}

type CheckoutLine struct {
	Name           string
	UnitPriceCents int64
	Quantity       int64
}

// CheckoutSessionParams holds parameters for creating a checkout session
type CheckoutSessionParams struct {
	Lines           []CheckoutLine
	Currency        string
	ShippingCents   int64
	ShippingCarrier string
	ShopperID       string
	CustomerEmail   string
	SuccessURL      string
	CancelURL       string
}

// CheckoutSession is a retrieved or event-delivered session plus the legacy
// shipping_details field, which is not part of the typed session.
type CheckoutSession struct {
	stripeapi.CheckoutSession
	ShippingDetails *stripeapi.ShippingDetails
}

func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if len(params.Lines) == 0 {
		return nil, fmt.Errorf("at least one line is required")
	}

	currency := strings.ToLower(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "usd"
	}

	lineItems := make([]*stripeapi.CheckoutSessionCreateLineItemParams, 0, len(params.Lines))
	for _, line := range params.Lines {
		quantity := line.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		lineItems = append(lineItems, &stripeapi.CheckoutSessionCreateLineItemParams{
			PriceData: &stripeapi.CheckoutSessionCreateLineItemPriceDataParams{
				Currency: stripeapi.String(currency),
				ProductData: &stripeapi.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripeapi.String(line.Name),
				},
				UnitAmount: stripeapi.Int64(line.UnitPriceCents),
			},
			Quantity: stripeapi.Int64(quantity),
		})
	}

	sessionParams := &stripeapi.CheckoutSessionCreateParams{
		Mode:              stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL:        stripeapi.String(params.SuccessURL),
		CancelURL:         stripeapi.String(params.CancelURL),
		ClientReferenceID: stripeapi.String(params.ShopperID),
		LineItems:         lineItems,
		PhoneNumberCollection: &stripeapi.CheckoutSessionCreatePhoneNumberCollectionParams{
			Enabled: stripeapi.Bool(true),
		},
		ShippingAddressCollection: &stripeapi.CheckoutSessionCreateShippingAddressCollectionParams{
			AllowedCountries: stripeapi.StringSlice([]string{"US", "CA", "GB"}),
		},
		Metadata: map[string]string{
			"shopper_id": params.ShopperID,
		},
	}

	if params.ShippingCents > 0 {
		sessionParams.ShippingOptions = []*stripeapi.CheckoutSessionCreateShippingOptionParams{
			{
				ShippingRateData: &stripeapi.CheckoutSessionCreateShippingOptionShippingRateDataParams{
					DisplayName: stripeapi.String(fmt.Sprintf("Shipping (%s)", params.ShippingCarrier)),
					Type:        stripeapi.String(string(stripeapi.ShippingRateTypeFixedAmount)),
					FixedAmount: &stripeapi.CheckoutSessionCreateShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripeapi.Int64(params.ShippingCents),
						Currency: stripeapi.String(currency),
					},
				},
			},
		}
	}

	// Customer email is optional. Only send if present to avoid Stripe validation errors.
	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripeapi.String(params.CustomerEmail)
	}

	sess, err := c.client.V1CheckoutSessions.Create(ctx, sessionParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess, nil
}

// GetCheckoutSession retrieves a session with its line items and payment intent expanded.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	params := &stripeapi.CheckoutSessionRetrieveParams{}
	params.AddExpand("line_items")
	params.AddExpand("payment_intent")

	sess, err := c.client.V1CheckoutSessions.Retrieve(ctx, sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	return &CheckoutSession{CheckoutSession: *sess}, nil
}

// ErrNotPaid is returned when a session has not completed payment.
var ErrNotPaid = fmt.Errorf("checkout session is not paid")

// OrderPayload converts a paid session into the order payload handed to
// confirmation. The payment intent ID is preferred as the payment reference.
func OrderPayload(session *CheckoutSession) (models.OrderPayload, error) {
	var payload models.OrderPayload
	if session == nil || session.ID == "" {
		return payload, fmt.Errorf("missing session ID")
	}
	if session.PaymentStatus != stripeapi.CheckoutSessionPaymentStatusPaid {
		return payload, ErrNotPaid
	}

	payload.PaymentID = session.ID
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		payload.PaymentID = session.PaymentIntent.ID
	}
	payload.Amount = centsToDecimal(session.AmountTotal)

	if session.LineItems != nil {
		for _, item := range session.LineItems.Data {
			if item == nil {
				continue
			}
			quantity := int(item.Quantity)
			if quantity <= 0 {
				quantity = 1
			}
			unit := item.AmountSubtotal / int64(quantity)
			if item.Price != nil && item.Price.UnitAmount > 0 {
				unit = item.Price.UnitAmount
			}
			payload.Items = append(payload.Items, models.LineItem{
				Name:     item.Description,
				Price:    centsToDecimal(unit),
				Quantity: quantity,
			})
		}
	}

	payload.CustomerInfo = customerInfo(session)
	return payload, nil
}

func customerInfo(session *CheckoutSession) models.CustomerInfo {
	info := models.CustomerInfo{
		UserID: session.ClientReferenceID,
		Email:  session.CustomerEmail,
	}
	if info.UserID == "" {
		info.UserID = session.Metadata["shopper_id"]
	}

	var address *stripeapi.Address
	if details := session.CustomerDetails; details != nil {
		if details.Email != "" {
			info.Email = details.Email
		}
		info.Name = details.Name
		info.Phone = details.Phone
		address = details.Address
	}
	if shipping := session.ShippingDetails; shipping != nil {
		if info.Name == "" {
			info.Name = shipping.Name
		}
		if shipping.Address != nil {
			address = shipping.Address
		}
	}
	if address != nil {
		info.Address = models.Address{
			Line1:      address.Line1,
			Line2:      address.Line2,
			City:       address.City,
			State:      address.State,
			PostalCode: address.PostalCode,
			Country:    address.Country,
		}
	}
	return info
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
