package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// resendEmails is the part of the Resend client this provider calls.
type resendEmails interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendProvider sends email through the Resend API.
type ResendProvider struct {
	emails resendEmails
}

// NewResendProvider creates a Resend provider. An empty key leaves it
// unconfigured.
func NewResendProvider(apiKey string) *ResendProvider {
	if apiKey == "" {
		return &ResendProvider{}
	}
	return &ResendProvider{emails: resend.NewClient(apiKey).Emails}
}

// Name implements EmailProvider.
func (p *ResendProvider) Name() string { return "resend" }

// IsConfigured implements EmailProvider.
func (p *ResendProvider) IsConfigured() bool { return p.emails != nil }

// Send implements EmailProvider. The Resend client call is not
// context-aware, so a cancelled context is checked up front.
func (p *ResendProvider) Send(ctx context.Context, msg *EmailMessage) error {
	if p.emails == nil {
		return fmt.Errorf("resend client not initialized")
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("resend: no recipients specified")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
	}
	if msg.HTML != "" {
		params.Html = msg.HTML
	}

	if _, err := p.emails.Send(params); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}
