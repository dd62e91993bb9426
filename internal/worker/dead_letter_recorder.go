package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/metrics"
	"github.com/pratik-mahalle/petalert/internal/queue"
)

// DeadLetterRecorder stores everything that reaches a channel's
// dead-letter queue so operators can inspect it
type DeadLetterRecorder struct {
	broker  queue.Broker
	channel notification.Channel
	repo    notification.DeadLetterRepository
	logger  *logger.Logger
}

// NewDeadLetterRecorder creates a recorder for one channel
func NewDeadLetterRecorder(broker queue.Broker, channel notification.Channel, repo notification.DeadLetterRepository, log *logger.Logger) *DeadLetterRecorder {
	return &DeadLetterRecorder{
		broker:  broker,
		channel: channel,
		repo:    repo,
		logger:  log.With("channel", string(channel)),
	}
}

// Run records dead letters until ctx is done
func (r *DeadLetterRecorder) Run(ctx context.Context) error {
	deliveries, err := r.broker.ConsumeDeadLetters(ctx, r.channel)
	if err != nil {
		return err
	}

	r.logger.Info("Starting dead letter recorder")
	for d := range deliveries {
		r.record(context.WithoutCancel(ctx), d)
	}
	r.logger.Info("Dead letter recorder stopped")
	return nil
}

func (r *DeadLetterRecorder) record(ctx context.Context, d *queue.Delivery) {
	f := toFailedNotification(r.channel, d)

	inserted, err := r.repo.Save(ctx, f)
	if err != nil {
		r.logger.WithFields(map[string]interface{}{
			"event_id": f.EventID,
			"error":    err.Error(),
		}).Error("Failed to record dead letter, requeueing")
		if err := d.Requeue(); err != nil {
			r.logger.ErrorWithErr(err, "Failed to requeue dead letter")
		}
		return
	}

	if err := d.Ack(); err != nil {
		r.logger.ErrorWithErr(err, "Failed to ack dead letter")
	}

	if !inserted {
		r.logger.With("event_id", f.EventID).Debug("Dead letter already recorded")
		return
	}
	metrics.RecordDeadLetter(string(r.channel), string(f.Reason))
	r.logger.WithFields(map[string]interface{}{
		"event_id":    f.EventID,
		"alert_id":    f.AlertID,
		"user_id":     f.UserID,
		"reason":      string(f.Reason),
		"retry_count": f.RetryCount,
	}).Warn("Dead letter recorded")
}

func toFailedNotification(channel notification.Channel, d *queue.Delivery) *notification.FailedNotification {
	f := &notification.FailedNotification{
		EventID:   d.MessageID,
		Channel:   channel,
		Reason:    d.Reason,
		LastError: d.LastError,
		FailedAt:  time.Now().UTC(),
	}
	if f.Reason == "" {
		f.Reason = notification.ReasonUndeliverable
	}

	if job := d.Job; job != nil {
		f.EventID = job.EventID
		f.UserID = job.UserID
		f.AlertID = job.AlertID
		f.RetryCount = job.RetryCount
	}
	if f.EventID == "" {
		// nothing identifies the message, keep it under a fresh id
		f.EventID = "undecodable-" + uuid.NewString()
	}

	if json.Valid(d.Body) {
		f.Payload = json.RawMessage(d.Body)
	} else {
		f.Payload, _ = json.Marshal(string(d.Body))
	}
	return f
}
