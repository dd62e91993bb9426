package worker

import (
	"context"
	"sync"
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/notifier"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/metrics"
	"github.com/pratik-mahalle/petalert/internal/queue"
)

// Delivery outcomes reported to metrics
const (
	OutcomeDelivered    = "delivered"
	OutcomeRetried      = "retried"
	OutcomeDeadLettered = "dead_lettered"
)

// ChannelConsumer delivers the jobs of one channel through its sender
type ChannelConsumer struct {
	broker      queue.Broker
	channel     notification.Channel
	sender      notifier.Sender
	maxRetries  int
	concurrency int
	logger      *logger.Logger
}

// NewChannelConsumer creates a consumer running concurrency workers
func NewChannelConsumer(
	broker queue.Broker,
	channel notification.Channel,
	sender notifier.Sender,
	maxRetries int,
	concurrency int,
	log *logger.Logger,
) *ChannelConsumer {
	if concurrency < 1 {
		concurrency = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ChannelConsumer{
		broker:      broker,
		channel:     channel,
		sender:      sender,
		maxRetries:  maxRetries,
		concurrency: concurrency,
		logger:      log.With("channel", string(channel)),
	}
}

// Run consumes until ctx is done, then waits for in-flight jobs
func (c *ChannelConsumer) Run(ctx context.Context) error {
	deliveries, err := c.broker.Consume(ctx, c.channel)
	if err != nil {
		return err
	}

	c.logger.WithFields(map[string]interface{}{
		"concurrency": c.concurrency,
		"max_retries": c.maxRetries,
	}).Info("Starting channel consumer")

	var wg sync.WaitGroup
	for i := 0; i < c.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range deliveries {
				c.handle(ctx, d)
			}
		}()
	}
	wg.Wait()

	c.logger.Info("Channel consumer stopped")
	return nil
}

// handle settles one delivery. Sends are not cancelled on shutdown.
func (c *ChannelConsumer) handle(ctx context.Context, d *queue.Delivery) {
	ctx = context.WithoutCancel(ctx)

	if d.Job == nil {
		c.logger.WithFields(map[string]interface{}{
			"message_id": d.MessageID,
		}).Warn("Rejecting undecodable message")
		if err := d.DeadLetter(ctx, notification.ReasonUndeliverable, "undecodable message"); err != nil {
			c.logger.ErrorWithErr(err, "Failed to dead-letter undecodable message")
		}
		metrics.RecordDelivery(string(c.channel), OutcomeDeadLettered, 0)
		return
	}

	job := d.Job
	log := c.logger.WithFields(map[string]interface{}{
		"event_id":    job.EventID,
		"alert_id":    job.AlertID,
		"user_id":     job.UserID,
		"retry_count": job.RetryCount,
	})

	start := time.Now()
	sendErr := c.sender.Send(ctx, job)
	elapsed := time.Since(start)

	switch {
	case sendErr == nil:
		if err := d.Ack(); err != nil {
			log.ErrorWithErr(err, "Failed to ack delivered job")
		}
		metrics.RecordDelivery(string(c.channel), OutcomeDelivered, elapsed)
		log.Info("Notification delivered")

	case notifier.IsPermanent(sendErr):
		c.deadLetter(ctx, d, log, notification.ReasonPermanent, sendErr, elapsed)

	case job.RetryCount < c.maxRetries:
		if err := d.Retry(ctx); err != nil {
			log.ErrorWithErr(err, "Failed to schedule retry, requeueing")
			requeue(d, log)
			return
		}
		metrics.RecordRetry(string(c.channel))
		metrics.RecordDelivery(string(c.channel), OutcomeRetried, elapsed)
		log.WithError(sendErr).Warn("Delivery failed, retry scheduled")

	default:
		c.deadLetter(ctx, d, log, notification.ReasonRetriesExhausted, sendErr, elapsed)
	}
}

func (c *ChannelConsumer) deadLetter(ctx context.Context, d *queue.Delivery, log *logger.Logger, reason notification.FailureReason, sendErr error, elapsed time.Duration) {
	if err := d.DeadLetter(ctx, reason, sendErr.Error()); err != nil {
		log.ErrorWithErr(err, "Failed to dead-letter job, requeueing")
		requeue(d, log)
		return
	}
	metrics.RecordDelivery(string(c.channel), OutcomeDeadLettered, elapsed)
	log.WithFields(map[string]interface{}{
		"reason": string(reason),
		"error":  sendErr.Error(),
	}).Error("Notification dead-lettered")
}

// requeue hands d back to its queue. If that fails too the broker redelivers
// it once the consumer channel closes.
func requeue(d *queue.Delivery, log *logger.Logger) {
	if err := d.Requeue(); err != nil {
		log.ErrorWithErr(err, "Failed to requeue job")
	}
}
