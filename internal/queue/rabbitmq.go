package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
)

// RabbitMQBroker implements Broker on RabbitMQ.
//
// For every channel the topology is
//
//	<exchange>      --ch--> <prefix>.<ch>        (dead-letters to <dlx>)
//	<retryExchange> --ch--> <prefix>.<ch>.retry  (TTL, dead-letters to <exchange>)
//	<dlx>           --ch--> <prefix>.<ch>.dlq
type RabbitMQBroker struct {
	cfg  config.QueueConfig
	log  *logger.Logger
	conn *amqp.Connection

	pubMu sync.Mutex
	pubCh *amqp.Channel
}

// NewRabbitMQBroker connects to cfg.URL and declares the topology
func NewRabbitMQBroker(cfg config.QueueConfig, log *logger.Logger) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	b := &RabbitMQBroker{cfg: cfg, log: log, conn: conn, pubCh: ch}
	if err := b.declareTopology(ch); err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"exchange": cfg.Exchange,
		"prefix":   cfg.QueuePrefix,
	}).Info("RabbitMQ topology declared")

	return b, nil
}

func (b *RabbitMQBroker) queueName(ch notification.Channel) string {
	return b.cfg.QueuePrefix + "." + string(ch)
}

func (b *RabbitMQBroker) declareTopology(ch *amqp.Channel) error {
	for _, ex := range []string{b.cfg.Exchange, b.cfg.RetryExchange, b.cfg.DeadLetterExchange} {
		if err := ch.ExchangeDeclare(ex, "direct", true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", ex, err)
		}
	}

	for _, channel := range notification.Channels {
		key := string(channel)
		main := b.queueName(channel)

		queues := []struct {
			name     string
			exchange string
			args     amqp.Table
		}{
			{
				name:     main,
				exchange: b.cfg.Exchange,
				args: amqp.Table{
					"x-dead-letter-exchange":    b.cfg.DeadLetterExchange,
					"x-dead-letter-routing-key": key,
				},
			},
			{
				name:     main + ".retry",
				exchange: b.cfg.RetryExchange,
				args: amqp.Table{
					"x-message-ttl":             b.cfg.RetryDelay.Milliseconds(),
					"x-dead-letter-exchange":    b.cfg.Exchange,
					"x-dead-letter-routing-key": key,
				},
			},
			{
				name:     main + ".dlq",
				exchange: b.cfg.DeadLetterExchange,
			},
		}

		for _, q := range queues {
			if _, err := ch.QueueDeclare(q.name, true, false, false, false, q.args); err != nil {
				return fmt.Errorf("failed to declare queue %s: %w", q.name, err)
			}
			if err := ch.QueueBind(q.name, key, q.exchange, false, nil); err != nil {
				return fmt.Errorf("failed to bind queue %s: %w", q.name, err)
			}
		}
	}
	return nil
}

func (b *RabbitMQBroker) publish(ctx context.Context, exchange string, job *notification.Job, body []byte, headers amqp.Table) error {
	if body == nil {
		var err error
		if body, err = job.Encode(); err != nil {
			return fmt.Errorf("failed to encode job: %w", err)
		}
	}
	if headers == nil {
		headers = amqp.Table{}
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
		Body:         body,
	}
	msg.MessageId = job.EventID
	msg.Headers[HeaderRetryCount] = int32(job.RetryCount)
	key := string(job.Channel)

	b.pubMu.Lock()
	dc, err := b.pubCh.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	b.pubMu.Unlock()
	if err != nil {
		return err
	}
	if dc == nil {
		return errors.New("publisher confirms are not enabled")
	}
	return awaitConfirm(ctx, dc)
}

// ErrPublishNacked is returned when the broker refuses a publish
var ErrPublishNacked = errors.New("rabbitmq nacked the publish")

type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// awaitConfirm blocks until the broker has taken responsibility for a publish
func awaitConfirm(ctx context.Context, c confirmation) error {
	acked, err := c.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("waiting for publish confirm: %w", err)
	}
	if !acked {
		return ErrPublishNacked
	}
	return nil
}

func (b *RabbitMQBroker) Publish(ctx context.Context, job *notification.Job) error {
	return b.publish(ctx, b.cfg.Exchange, job, nil, nil)
}

func (b *RabbitMQBroker) Consume(ctx context.Context, channel notification.Channel) (<-chan *Delivery, error) {
	return b.consume(ctx, channel, b.queueName(channel))
}

func (b *RabbitMQBroker) ConsumeDeadLetters(ctx context.Context, channel notification.Channel) (<-chan *Delivery, error) {
	return b.consume(ctx, channel, b.queueName(channel)+".dlq")
}

func (b *RabbitMQBroker) consume(ctx context.Context, channel notification.Channel, queue string) (<-chan *Delivery, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open consumer channel: %w", err)
	}
	if err := ch.Qos(b.cfg.Prefetch, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to consume %s: %w", queue, err)
	}

	out := make(chan *Delivery)
	go func() {
		defer close(out)
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					b.log.With("queue", queue).Warn("RabbitMQ consumer closed")
					return
				}
				d := b.toDelivery(channel, m)
				select {
				case out <- d:
				case <-ctx.Done():
					m.Nack(false, true)
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *RabbitMQBroker) toDelivery(channel notification.Channel, m amqp.Delivery) *Delivery {
	d := &Delivery{
		Job:       decode(m.Body),
		MessageID: m.MessageId,
		Channel:   channel,
		Body:      m.Body,
		ack:       &rabbitAck{cfg: b.cfg, republish: b.publish, msg: m},
	}
	if reason, ok := m.Headers[HeaderFailureReason].(string); ok {
		d.Reason = notification.FailureReason(reason)
	}
	if lastErr, ok := m.Headers[HeaderLastError].(string); ok {
		d.LastError = lastErr
	}
	if d.Job != nil {
		d.Job.RetryCount = headerInt(m.Headers[HeaderRetryCount], d.Job.RetryCount)
		if d.MessageID == "" {
			d.MessageID = d.Job.EventID
		}
	}
	return d
}

func headerInt(v interface{}, fallback int) int {
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	}
	return fallback
}

func (b *RabbitMQBroker) Healthy() error {
	if b.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	return nil
}

func (b *RabbitMQBroker) Close() error {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	if b.pubCh != nil {
		b.pubCh.Close()
	}
	return b.conn.Close()
}

type republishFunc func(ctx context.Context, exchange string, job *notification.Job, body []byte, headers amqp.Table) error

// rabbitAck settles a delivery. Retries and dead letters are republished and
// confirmed before the original message is acked, so a failed republish
// leaves the original on its queue.
type rabbitAck struct {
	cfg       config.QueueConfig
	republish republishFunc
	msg       amqp.Delivery
}

func (a *rabbitAck) ack(d *Delivery) error {
	return a.msg.Ack(false)
}

func (a *rabbitAck) retry(ctx context.Context, d *Delivery) error {
	next := *d.Job
	next.RetryCount++
	if err := a.republish(ctx, a.cfg.RetryExchange, &next, nil, nil); err != nil {
		return err
	}
	return a.msg.Ack(false)
}

func (a *rabbitAck) deadLetter(ctx context.Context, d *Delivery, reason notification.FailureReason, lastErr string) error {
	if d.Job == nil {
		// the main queue dead-letters rejected messages on its own
		return a.msg.Nack(false, false)
	}
	headers := amqp.Table{
		HeaderFailureReason: string(reason),
		HeaderLastError:     lastErr,
	}
	if err := a.republish(ctx, a.cfg.DeadLetterExchange, d.Job, d.Body, headers); err != nil {
		return err
	}
	return a.msg.Ack(false)
}

func (a *rabbitAck) requeue(d *Delivery) error {
	return a.msg.Nack(false, true)
}
