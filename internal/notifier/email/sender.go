package email

import (
	"context"
	"fmt"

	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/notifier"
)

// Sender delivers email jobs through a Registry
type Sender struct {
	registry *Registry
	from     string
}

// NewSender creates an email sender using from as the sender address
func NewSender(registry *Registry, from string) *Sender {
	return &Sender{registry: registry, from: from}
}

func (s *Sender) Send(ctx context.Context, job *notification.Job) error {
	if job.Email == nil || job.Email.To == "" {
		return notifier.Permanent(fmt.Errorf("job %s has no email recipient", job.EventID))
	}

	return s.registry.Send(ctx, &Request{
		From:    s.from,
		To:      []string{job.Email.To},
		Subject: job.Email.Subject,
		Body:    job.Email.Body,
	})
}
