package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/notifier"
	"github.com/pratik-mahalle/petalert/internal/notifier/chat"
	"github.com/pratik-mahalle/petalert/internal/notifier/email"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/queue"
)

// NewSenders builds the sender of every channel from configuration
func NewSenders(ctx context.Context, cfg *config.Config, log *logger.Logger) (map[notification.Channel]notifier.Sender, error) {
	registry := email.NewRegistry(log)
	registry.Register(email.NewSESProvider(ctx, cfg.Email.AWSRegion))
	registry.Register(email.NewResendProvider(cfg.Email.ResendAPIKey))

	if err := registry.SetPrimary(cfg.Email.PrimaryProvider); err != nil {
		return nil, err
	}
	if cfg.Email.FallbackProvider != "" && cfg.Email.FallbackProvider != cfg.Email.PrimaryProvider {
		if err := registry.SetFallback(cfg.Email.FallbackProvider); err != nil {
			return nil, err
		}
	}

	return map[notification.Channel]notifier.Sender{
		notification.ChannelEmail: email.NewSender(registry, cfg.Email.FromAddress),
		notification.ChannelChat:  chat.NewTelegramSender(cfg.Chat.APIBaseURL, cfg.Chat.BotToken, cfg.Chat.Timeout),
	}, nil
}

// Runner runs a consumer and a dead letter recorder per channel, plus the backlog monitor
type Runner struct {
	consumers []*ChannelConsumer
	recorders []*DeadLetterRecorder
	monitor   *DeadLetterMonitor
	logger    *logger.Logger
}

// NewRunner wires one pipeline per channel in senders
func NewRunner(
	cfg config.QueueConfig,
	schedule string,
	broker queue.Broker,
	senders map[notification.Channel]notifier.Sender,
	dlq notification.DeadLetterRepository,
	log *logger.Logger,
) (*Runner, error) {
	monitor, err := NewDeadLetterMonitor(dlq, schedule, log)
	if err != nil {
		return nil, err
	}

	r := &Runner{monitor: monitor, logger: log}
	for _, channel := range notification.Channels {
		sender, ok := senders[channel]
		if !ok {
			return nil, fmt.Errorf("no sender configured for channel %s", channel)
		}
		r.consumers = append(r.consumers, NewChannelConsumer(broker, channel, sender, cfg.MaxRetries, cfg.ConsumerConcurrency, log))
		r.recorders = append(r.recorders, NewDeadLetterRecorder(broker, channel, dlq, log))
	}
	return r, nil
}

// Run blocks until ctx is done or one component fails
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, c := range r.consumers {
		g.Go(func() error { return c.Run(ctx) })
	}
	for _, rec := range r.recorders {
		g.Go(func() error { return rec.Run(ctx) })
	}
	g.Go(func() error { return r.monitor.Run(ctx) })

	r.logger.WithFields(map[string]interface{}{
		"channels": len(r.consumers),
	}).Info("Notification workers started")

	err := g.Wait()
	r.logger.Info("Notification workers stopped")
	return err
}
