package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/notification"
)

// ErrBrokerClosed is returned by operations on a closed broker
var ErrBrokerClosed = errors.New("broker closed")

// MemoryBroker is an in-process Broker used for single-binary deployments
// and tests. Messages do not survive a restart.
type MemoryBroker struct {
	mu         sync.Mutex
	queues     map[string]chan *Delivery
	buffer     int
	retryDelay time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

// NewMemoryBroker creates a broker whose queues hold up to buffer messages
func NewMemoryBroker(buffer int, retryDelay time.Duration) *MemoryBroker {
	return &MemoryBroker{
		queues:     make(map[string]chan *Delivery),
		buffer:     buffer,
		retryDelay: retryDelay,
		done:       make(chan struct{}),
	}
}

func mainQueue(ch notification.Channel) string { return string(ch) }
func deadQueue(ch notification.Channel) string { return string(ch) + ".dlq" }

func (b *MemoryBroker) queue(name string) chan *Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[name]
	if !ok {
		q = make(chan *Delivery, b.buffer)
		b.queues[name] = q
	}
	return q
}

func (b *MemoryBroker) send(ctx context.Context, name string, d *Delivery) error {
	select {
	case <-b.done:
		return ErrBrokerClosed
	default:
	}

	select {
	case b.queue(name) <- d:
		return nil
	case <-b.done:
		return ErrBrokerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MemoryBroker) Publish(ctx context.Context, job *notification.Job) error {
	body, err := job.Encode()
	if err != nil {
		return err
	}
	return b.send(ctx, mainQueue(job.Channel), b.delivery(job.Channel, body))
}

func (b *MemoryBroker) delivery(ch notification.Channel, body []byte) *Delivery {
	d := &Delivery{Channel: ch, Body: body, Job: decode(body), ack: &memoryAck{broker: b}}
	if d.Job != nil {
		d.MessageID = d.Job.EventID
	}
	return d
}

func (b *MemoryBroker) Consume(ctx context.Context, channel notification.Channel) (<-chan *Delivery, error) {
	return b.consume(ctx, mainQueue(channel))
}

func (b *MemoryBroker) ConsumeDeadLetters(ctx context.Context, channel notification.Channel) (<-chan *Delivery, error) {
	return b.consume(ctx, deadQueue(channel))
}

func (b *MemoryBroker) consume(ctx context.Context, name string) (<-chan *Delivery, error) {
	select {
	case <-b.done:
		return nil, ErrBrokerClosed
	default:
	}

	src := b.queue(name)
	out := make(chan *Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.done:
				return
			case d := <-src:
				select {
				case out <- d:
				case <-ctx.Done():
					// put it back for the next consumer
					select {
					case src <- d:
					case <-b.done:
					}
					return
				case <-b.done:
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *MemoryBroker) Healthy() error {
	select {
	case <-b.done:
		return ErrBrokerClosed
	default:
		return nil
	}
}

func (b *MemoryBroker) Close() error {
	b.closeOnce.Do(func() { close(b.done) })
	return nil
}

// Pending returns the number of queued messages on a channel's main queue
func (b *MemoryBroker) Pending(channel notification.Channel) int {
	return len(b.queue(mainQueue(channel)))
}

type memoryAck struct {
	broker *MemoryBroker
}

func (a *memoryAck) ack(d *Delivery) error { return nil }

func (a *memoryAck) retry(ctx context.Context, d *Delivery) error {
	next := *d.Job
	next.RetryCount++
	body, err := next.Encode()
	if err != nil {
		return err
	}
	nd := a.broker.delivery(d.Channel, body)

	if a.broker.retryDelay <= 0 {
		return a.broker.send(ctx, mainQueue(d.Channel), nd)
	}
	time.AfterFunc(a.broker.retryDelay, func() {
		_ = a.broker.send(context.Background(), mainQueue(d.Channel), nd)
	})
	return nil
}

func (a *memoryAck) deadLetter(ctx context.Context, d *Delivery, reason notification.FailureReason, lastErr string) error {
	nd := a.broker.delivery(d.Channel, d.Body)
	nd.MessageID = d.MessageID
	nd.Reason = reason
	nd.LastError = lastErr
	return a.broker.send(ctx, deadQueue(d.Channel), nd)
}

func (a *memoryAck) requeue(d *Delivery) error {
	name := mainQueue(d.Channel)
	if d.Reason != "" {
		name = deadQueue(d.Channel)
	}
	return a.broker.send(context.Background(), name, d)
}
