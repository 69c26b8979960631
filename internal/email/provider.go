// Package email sends order notifications.
package email

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
}

type Email struct {
	To       string
	Subject  string
	Text     string
	HTML     string
	// Category names the template, e.g. order_confirmation.
	Category string
}

type Config struct {
	APIKey string
	From   string
}

// NewProvider returns the Resend provider, or nil when no API key is configured.
func NewProvider(config Config, httpClient *http.Client) (Provider, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, nil
	}
	if strings.TrimSpace(config.From) == "" {
		return nil, fmt.Errorf("EMAIL_FROM is required when RESEND_API_KEY is set")
	}
	return NewResendProvider(config.APIKey, config.From, httpClient), nil
}
