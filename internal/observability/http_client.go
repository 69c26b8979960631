package observability

import (
	"net/http"
	"time"

	sentryhttpclient "github.com/getsentry/sentry-go/httpclient"
)

// Hosts the storefront calls out to.
const (
	StripeAPIHost = "api.stripe.com"
	ResendAPIHost = "api.resend.com"
)

// NewHTTPClient returns a client that records each request as a Sentry span.
// Trace headers are only propagated to host; other destinations get none.
func NewHTTPClient(host string, timeout time.Duration) *http.Client {
	var targets []string
	if host != "" {
		targets = []string{host}
	}
	client := &http.Client{
		Transport: sentryhttpclient.NewSentryRoundTripper(
			http.DefaultTransport,
			sentryhttpclient.WithTracePropagationTargets(targets),
		),
	}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return client
}
