package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/pratik-mahalle/petalert/internal/notifier"
)

// ResendProvider sends email through the Resend API
type ResendProvider struct {
	client *resend.Client
}

// NewResendProvider creates the provider; it stays unconfigured without an API key
func NewResendProvider(apiKey string) *ResendProvider {
	if apiKey == "" {
		return &ResendProvider{}
	}
	return &ResendProvider{client: resend.NewClient(apiKey)}
}

func (p *ResendProvider) Name() string { return "resend" }

func (p *ResendProvider) IsConfigured() bool { return p.client != nil }

func (p *ResendProvider) Send(ctx context.Context, req *Request) error {
	if p.client == nil {
		return notifier.Transient(fmt.Errorf("resend client not initialized"))
	}
	if len(req.To) == 0 {
		return notifier.Permanent(fmt.Errorf("recipient is required"))
	}

	params := &resend.SendEmailRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Body,
	}

	if _, err := p.client.Emails.Send(params); err != nil {
		return notifier.ClassifyMessage(fmt.Errorf("resend send failed: %w", err))
	}
	return nil
}
