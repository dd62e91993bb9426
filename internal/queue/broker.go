// Package queue carries notification jobs between the dispatcher and the
// channel workers. Every channel has its own main queue, a delayed retry
// queue and a dead-letter queue.
package queue

import (
	"context"
	"fmt"

	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
)

// Message headers
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderFailureReason = "x-failure-reason"
	HeaderLastError     = "x-last-error"
)

// Publisher enqueues jobs on the queue of their channel
type Publisher interface {
	Publish(ctx context.Context, job *notification.Job) error
}

// Broker is a Publisher that can also hand out deliveries
type Broker interface {
	Publisher

	// Consume streams deliveries of a channel's main queue until ctx is done
	Consume(ctx context.Context, channel notification.Channel) (<-chan *Delivery, error)

	// ConsumeDeadLetters streams deliveries of a channel's dead-letter queue
	ConsumeDeadLetters(ctx context.Context, channel notification.Channel) (<-chan *Delivery, error)

	// Healthy returns an error when the broker cannot accept messages
	Healthy() error

	Close() error
}

// Delivery is one received message. Job is nil when the body could not be
// decoded. Exactly one of Ack, Retry, DeadLetter or Requeue must be called.
type Delivery struct {
	Job       *notification.Job
	MessageID string
	Channel   notification.Channel
	Body      []byte

	// Reason and LastError are set on dead-letter deliveries
	Reason    notification.FailureReason
	LastError string

	ack acknowledger
}

type acknowledger interface {
	ack(d *Delivery) error
	retry(ctx context.Context, d *Delivery) error
	deadLetter(ctx context.Context, d *Delivery, reason notification.FailureReason, lastErr string) error
	requeue(d *Delivery) error
}

// Ack removes the message from its queue
func (d *Delivery) Ack() error {
	return d.ack.ack(d)
}

// Retry schedules the job for another attempt after the retry delay with
// its retry count incremented, then acks the original
func (d *Delivery) Retry(ctx context.Context) error {
	if d.Job == nil {
		return fmt.Errorf("cannot retry undecodable message %s", d.MessageID)
	}
	return d.ack.retry(ctx, d)
}

// DeadLetter moves the message to the dead-letter queue of its channel
func (d *Delivery) DeadLetter(ctx context.Context, reason notification.FailureReason, lastErr string) error {
	return d.ack.deadLetter(ctx, d, reason, lastErr)
}

// Requeue returns the message to the head of its queue for redelivery
func (d *Delivery) Requeue() error {
	return d.ack.requeue(d)
}

// NewBroker builds the broker selected by cfg.Driver
func NewBroker(cfg config.QueueConfig, log *logger.Logger) (Broker, error) {
	switch cfg.Driver {
	case "rabbitmq":
		return NewRabbitMQBroker(cfg, log)
	case "memory":
		return NewMemoryBroker(256, cfg.RetryDelay), nil
	default:
		return nil, fmt.Errorf("unsupported queue driver: %s", cfg.Driver)
	}
}

func decode(body []byte) *notification.Job {
	job, err := notification.DecodeJob(body)
	if err != nil || job.EventID == "" {
		return nil
	}
	return job
}
