package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	stripeapi "github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

func signedWebhookRequest(t *testing.T, secret, eventID, eventType, object string) *http.Request {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{"id":%q,"object":"event","api_version":%q,"type":%q,"data":{"object":%s}}`,
		eventID, stripeapi.APIVersion, eventType, object))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	return req
}

func TestStripeWebhook_RequiresSecret(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.h.config.StripeWebhookSecret = ""

	rec := httptest.NewRecorder()
	env.h.StripeWebhook(rec, signedWebhookRequest(t, testWebhookSecret, "evt_1", "checkout.session.expired", `{"id":"cs_1","object":"checkout.session"}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusNotFound)
	}
}

func TestStripeWebhook_RejectsBadSignature(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.h.StripeWebhook(rec, signedWebhookRequest(t, "whsec_other", "evt_1", "checkout.session.expired", `{"id":"cs_1","object":"checkout.session"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
}

func TestStripeWebhook_DeduplicatesDeliveries(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for attempt := 1; attempt <= 2; attempt++ {
		rec := httptest.NewRecorder()
		env.h.StripeWebhook(rec, signedWebhookRequest(t, testWebhookSecret, "evt_expired", "checkout.session.expired", `{"id":"cs_1","object":"checkout.session","client_reference_id":"shopper-1"}`))
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: unexpected status: got=%d want=%d", attempt, rec.Code, http.StatusOK)
		}
	}
}

func TestStripeWebhook_FailedDeliveryIsRetried(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for attempt := 1; attempt <= 2; attempt++ {
		rec := httptest.NewRecorder()
		env.h.StripeWebhook(rec, signedWebhookRequest(t, testWebhookSecret, "evt_broken", "checkout.session.completed", `{"id":42,"object":"checkout.session"}`))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("attempt %d: unexpected status: got=%d want=%d", attempt, rec.Code, http.StatusInternalServerError)
		}
	}
}

func TestStripeWebhook_IgnoresUnhandledEvents(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.h.StripeWebhook(rec, signedWebhookRequest(t, testWebhookSecret, "evt_other", "invoice.paid", `{"id":"in_1","object":"invoice"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
}
