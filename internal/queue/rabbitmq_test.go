package queue

import (
	"context"
	stderrors "errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
)

type recordingAcknowledger struct {
	acks, nacks int
}

func (r *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	r.acks++
	return nil
}

func (r *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	r.nacks++
	return nil
}

func (r *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	r.nacks++
	return nil
}

type republished struct {
	exchange string
	job      notification.Job
	headers  amqp.Table
}

func newRabbitDelivery(publishErr error) (*Delivery, *recordingAcknowledger, *[]republished) {
	acker := &recordingAcknowledger{}
	var sent []republished
	ack := &rabbitAck{
		cfg: config.QueueConfig{RetryExchange: "retry", DeadLetterExchange: "dlx"},
		republish: func(ctx context.Context, exchange string, job *notification.Job, body []byte, headers amqp.Table) error {
			if publishErr != nil {
				return publishErr
			}
			sent = append(sent, republished{exchange: exchange, job: *job, headers: headers})
			return nil
		},
		msg: amqp.Delivery{Acknowledger: acker, DeliveryTag: 1},
	}
	d := &Delivery{
		Job:     &notification.Job{EventID: "job-1", Channel: notification.ChannelEmail, RetryCount: 1},
		Channel: notification.ChannelEmail,
		ack:     ack,
	}
	return d, acker, &sent
}

func TestRabbitAck_RetryAcksAfterConfirmedRepublish(t *testing.T) {
	d, acker, sent := newRabbitDelivery(nil)

	if err := d.Retry(context.Background()); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if len(*sent) != 1 || (*sent)[0].exchange != "retry" || (*sent)[0].job.RetryCount != 2 {
		t.Errorf("republished = %+v", *sent)
	}
	if acker.acks != 1 {
		t.Errorf("acks = %d, want 1", acker.acks)
	}
}

func TestRabbitAck_FailedRepublishKeepsOriginal(t *testing.T) {
	tests := []struct {
		name   string
		settle func(d *Delivery) error
	}{
		{name: "retry", settle: func(d *Delivery) error { return d.Retry(context.Background()) }},
		{name: "dead letter", settle: func(d *Delivery) error {
			return d.DeadLetter(context.Background(), notification.ReasonPermanent, "boom")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, acker, _ := newRabbitDelivery(ErrPublishNacked)

			if err := tt.settle(d); !stderrors.Is(err, ErrPublishNacked) {
				t.Fatalf("error = %v, want ErrPublishNacked", err)
			}
			if acker.acks != 0 || acker.nacks != 0 {
				t.Errorf("original was settled: acks=%d nacks=%d", acker.acks, acker.nacks)
			}
		})
	}
}

func TestRabbitAck_DeadLetterCarriesReason(t *testing.T) {
	d, acker, sent := newRabbitDelivery(nil)

	if err := d.DeadLetter(context.Background(), notification.ReasonPermanent, "mailbox unavailable"); err != nil {
		t.Fatalf("DeadLetter() error = %v", err)
	}
	if len(*sent) != 1 || (*sent)[0].exchange != "dlx" {
		t.Fatalf("republished = %+v", *sent)
	}
	if got := (*sent)[0].headers[HeaderFailureReason]; got != string(notification.ReasonPermanent) {
		t.Errorf("reason header = %v", got)
	}
	if acker.acks != 1 {
		t.Errorf("acks = %d, want 1", acker.acks)
	}
}

type fakeConfirmation struct {
	acked bool
	err   error
}

func (f fakeConfirmation) WaitContext(ctx context.Context) (bool, error) {
	return f.acked, f.err
}

func TestAwaitConfirm(t *testing.T) {
	ctx := context.Background()

	if err := awaitConfirm(ctx, fakeConfirmation{acked: true}); err != nil {
		t.Errorf("acked publish: error = %v", err)
	}
	if err := awaitConfirm(ctx, fakeConfirmation{acked: false}); !stderrors.Is(err, ErrPublishNacked) {
		t.Errorf("nacked publish: error = %v, want ErrPublishNacked", err)
	}
	if err := awaitConfirm(ctx, fakeConfirmation{err: context.DeadlineExceeded}); !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("timed out publish: error = %v", err)
	}
}
