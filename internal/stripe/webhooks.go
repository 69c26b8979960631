package stripe

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	stripeapi "github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

func ReadWebhookEvent(r *http.Request, secret string) (*stripeapi.Event, error) {
	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		return nil, fmt.Errorf("missing stripe signature header")
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	event, err := webhook.ConstructEvent(payload, signature, secret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature validation failed: %w", err)
	}

	return &event, nil
}

// DecodeCheckoutSession decodes the session object carried by a checkout.session.* event.
func DecodeCheckoutSession(event *stripeapi.Event) (*CheckoutSession, error) {
	if event == nil || event.Data == nil {
		return nil, fmt.Errorf("event has no data")
	}
	var session CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session.CheckoutSession); err != nil {
		return nil, fmt.Errorf("invalid event object: %w", err)
	}
	var shipping struct {
		ShippingDetails *stripeapi.ShippingDetails `json:"shipping_details"`
	}
	if err := json.Unmarshal(event.Data.Raw, &shipping); err == nil {
		session.ShippingDetails = shipping.ShippingDetails
	}
	if session.ID == "" {
		return nil, fmt.Errorf("missing session ID")
	}
	return &session, nil
}
