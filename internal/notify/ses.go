package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the part of the SES v2 client this provider calls.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESProvider sends email through AWS SES v2. Credentials come from the
// default AWS chain.
type SESProvider struct {
	client sesAPI
	region string
}

// NewSESProvider loads the default AWS configuration for region. When the
// configuration cannot be loaded the provider is returned unconfigured
// along with the error.
func NewSESProvider(ctx context.Context, region string) (*SESProvider, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return &SESProvider{region: region}, fmt.Errorf("loading AWS config: %w", err)
	}
	return &SESProvider{client: sesv2.NewFromConfig(cfg), region: region}, nil
}

// Name implements EmailProvider.
func (p *SESProvider) Name() string { return "ses" }

// IsConfigured implements EmailProvider.
func (p *SESProvider) IsConfigured() bool { return p.client != nil }

// Send implements EmailProvider.
func (p *SESProvider) Send(ctx context.Context, msg *EmailMessage) error {
	if p.client == nil {
		return fmt.Errorf("SES client not initialized")
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("ses: no recipients specified")
	}

	var body types.Body
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML)}
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text)}
	}

	_, err := p.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body:    &body,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES send failed: %w", err)
	}
	return nil
}
