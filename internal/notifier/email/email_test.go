package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/notifier"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
)

type fakeProvider struct {
	name       string
	configured bool
	err        error
	sent       []*Request
}

func (p *fakeProvider) Name() string       { return p.name }
func (p *fakeProvider) IsConfigured() bool { return p.configured }
func (p *fakeProvider) Send(ctx context.Context, req *Request) error {
	p.sent = append(p.sent, req)
	return p.err
}

func newRegistry(t *testing.T, providers ...*fakeProvider) *Registry {
	t.Helper()
	r := NewRegistry(logger.Nop())
	for _, p := range providers {
		r.Register(p)
	}
	if err := r.SetPrimary(providers[0].name); err != nil {
		t.Fatalf("SetPrimary() error = %v", err)
	}
	var rest []string
	for _, p := range providers[1:] {
		rest = append(rest, p.name)
	}
	if err := r.SetFallback(rest...); err != nil {
		t.Fatalf("SetFallback() error = %v", err)
	}
	return r
}

func TestRegistry_Send(t *testing.T) {
	primaryErr := errors.New("primary down")

	tests := []struct {
		name         string
		primary      *fakeProvider
		fallback     *fakeProvider
		wantErr      error
		wantFallback int
	}{
		{
			name:         "primary succeeds",
			primary:      &fakeProvider{name: "resend", configured: true},
			fallback:     &fakeProvider{name: "ses", configured: true},
			wantFallback: 0,
		},
		{
			name:         "fallback after failure",
			primary:      &fakeProvider{name: "resend", configured: true, err: primaryErr},
			fallback:     &fakeProvider{name: "ses", configured: true},
			wantFallback: 1,
		},
		{
			name:         "unconfigured primary skipped",
			primary:      &fakeProvider{name: "resend", configured: false},
			fallback:     &fakeProvider{name: "ses", configured: true},
			wantFallback: 1,
		},
		{
			name:         "all fail returns first error",
			primary:      &fakeProvider{name: "resend", configured: true, err: primaryErr},
			fallback:     &fakeProvider{name: "ses", configured: true, err: errors.New("ses down")},
			wantErr:      primaryErr,
			wantFallback: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry(t, tt.primary, tt.fallback)
			err := r.Send(context.Background(), &Request{To: []string{"a@example.com"}})

			if tt.wantErr == nil && err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Send() error = %v, want %v", err, tt.wantErr)
			}
			if len(tt.fallback.sent) != tt.wantFallback {
				t.Errorf("fallback sends = %d, want %d", len(tt.fallback.sent), tt.wantFallback)
			}
		})
	}
}

func TestRegistry_NoProvider(t *testing.T) {
	r := newRegistry(t, &fakeProvider{name: "resend"})
	err := r.Send(context.Background(), &Request{To: []string{"a@example.com"}})
	if err == nil || notifier.IsPermanent(err) {
		t.Errorf("Send() error = %v, want transient error", err)
	}
}

type fakeSES struct {
	err   error
	input *sesv2.SendEmailInput
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSESProvider_Classification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantPermanent bool
	}{
		{"rejected", &types.MessageRejected{Message: aws.String("rejected")}, true},
		{"bad request", &types.BadRequestException{Message: aws.String("bad")}, true},
		{"throttled", &types.TooManyRequestsException{Message: aws.String("slow down")}, false},
		{"network", errors.New("dial tcp: i/o timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSESProviderWithClient(&fakeSES{err: tt.err})
			err := p.Send(context.Background(), &Request{From: "alerts@example.com", To: []string{"a@example.com"}})
			if err == nil {
				t.Fatal("Send() expected error")
			}
			if got := notifier.IsPermanent(err); got != tt.wantPermanent {
				t.Errorf("IsPermanent() = %v, want %v", got, tt.wantPermanent)
			}
		})
	}
}

func TestSESProvider_BuildsMessage(t *testing.T) {
	client := &fakeSES{}
	p := NewSESProviderWithClient(client)

	err := p.Send(context.Background(), &Request{
		From:    "alerts@example.com",
		To:      []string{"owner@example.com"},
		Subject: "Rex was seen",
		Body:    "Rex is now SEEN",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got := *client.input.Content.Simple.Subject.Data; got != "Rex was seen" {
		t.Errorf("subject = %q", got)
	}
	if got := client.input.Destination.ToAddresses; len(got) != 1 || got[0] != "owner@example.com" {
		t.Errorf("to = %v", got)
	}
}

func TestSender_MissingRecipientIsPermanent(t *testing.T) {
	s := NewSender(newRegistry(t, &fakeProvider{name: "resend", configured: true}), "alerts@example.com")

	err := s.Send(context.Background(), &notification.Job{EventID: "e-1", Channel: notification.ChannelEmail})
	if !notifier.IsPermanent(err) {
		t.Errorf("Send() error = %v, want permanent", err)
	}
}
