package email

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/pratik-mahalle/petalert/internal/notifier"
)

// SESAPI is the subset of the SES v2 client the provider calls
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESProvider sends email through AWS SES
type SESProvider struct {
	client SESAPI
}

// NewSESProvider loads the default AWS credential chain for region.
// The provider is unconfigured when no configuration can be loaded.
func NewSESProvider(ctx context.Context, region string) *SESProvider {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return &SESProvider{}
	}
	return &SESProvider{client: sesv2.NewFromConfig(cfg)}
}

// NewSESProviderWithClient wraps an existing client
func NewSESProviderWithClient(client SESAPI) *SESProvider {
	return &SESProvider{client: client}
}

func (p *SESProvider) Name() string { return "ses" }

func (p *SESProvider) IsConfigured() bool { return p.client != nil }

func (p *SESProvider) Send(ctx context.Context, req *Request) error {
	if p.client == nil {
		return notifier.Transient(fmt.Errorf("SES client not initialized"))
	}
	if len(req.To) == 0 {
		return notifier.Permanent(fmt.Errorf("recipient is required"))
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: &req.From,
		Destination: &types.Destination{
			ToAddresses: req.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &req.Subject},
				Body:    &types.Body{Text: &types.Content{Data: &req.Body}},
			},
		},
	}

	if _, err := p.client.SendEmail(ctx, input); err != nil {
		return classifySES(fmt.Errorf("SES send failed: %w", err))
	}
	return nil
}

func classifySES(err error) error {
	var (
		rejected   *types.MessageRejected
		unverified *types.MailFromDomainNotVerifiedException
		badRequest *types.BadRequestException
		notFound   *types.NotFoundException
		suspended  *types.AccountSuspendedException
	)
	switch {
	case errors.As(err, &rejected),
		errors.As(err, &unverified),
		errors.As(err, &badRequest),
		errors.As(err, &notFound),
		errors.As(err, &suspended):
		return notifier.Permanent(err)
	}
	return notifier.Transient(err)
}
