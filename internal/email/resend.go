package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	resend "github.com/resend/resend-go/v3"
)

var (
	errNoRecipient = errors.New("email recipient is required")
	errEmptyBody   = errors.New("email body is empty")
)

// ResendProvider delivers mail through the Resend API.
type ResendProvider struct {
	from   string
	client *resend.Client
}

// NewResendProvider creates a Resend provider. A nil httpClient uses the library default.
func NewResendProvider(apiKey, from string, httpClient *http.Client) *ResendProvider {
	if httpClient == nil {
		return &ResendProvider{from: from, client: resend.NewClient(apiKey)}
	}
	return &ResendProvider{from: from, client: resend.NewCustomClient(httpClient, apiKey)}
}

func (r *ResendProvider) SendEmail(ctx context.Context, email *Email) error {
	params, err := r.request(email)
	if err != nil {
		return err
	}
	if _, err := r.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: send %q: %w", email.Subject, err)
	}
	return nil
}

func (r *ResendProvider) request(email *Email) (*resend.SendEmailRequest, error) {
	if email == nil {
		return nil, errors.New("email is required")
	}
	to := strings.TrimSpace(email.To)
	if to == "" {
		return nil, errNoRecipient
	}
	if email.HTML == "" && email.Text == "" {
		return nil, errEmptyBody
	}

	params := &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{to},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}
	if email.Category != "" {
		params.Tags = []resend.Tag{{Name: "category", Value: email.Category}}
	}
	return params, nil
}
