package worker

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/notifier"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/queue"
	"github.com/pratik-mahalle/petalert/internal/testutil"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// pipeline runs a consumer and a dead letter recorder for one channel
type pipeline struct {
	broker *queue.MemoryBroker
	dlq    *testutil.MockDeadLetterRepository
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func startPipeline(t *testing.T, channel notification.Channel, sender notifier.Sender, maxRetries int) *pipeline {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	p := &pipeline{
		broker: queue.NewMemoryBroker(16, 0),
		dlq:    testutil.NewMockDeadLetterRepository(),
		cancel: cancel,
	}

	consumer := NewChannelConsumer(p.broker, channel, sender, maxRetries, 2, testLogger())
	recorder := NewDeadLetterRecorder(p.broker, channel, p.dlq, testLogger())

	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		if err := consumer.Run(ctx); err != nil {
			t.Errorf("consumer.Run() error = %v", err)
		}
	}()
	go func() {
		defer p.wg.Done()
		if err := recorder.Run(ctx); err != nil {
			t.Errorf("recorder.Run() error = %v", err)
		}
	}()

	t.Cleanup(p.stop)
	return p
}

func (p *pipeline) stop() {
	p.cancel()
	p.wg.Wait()
	_ = p.broker.Close()
}

func emailJob(eventID string) *notification.Job {
	return &notification.Job{
		EventID:        eventID,
		AlertEventID:   "alert-event-1",
		Channel:        notification.ChannelEmail,
		UserID:         3,
		AlertID:        9,
		PreviousStatus: alert.StatusOpened,
		NewStatus:      alert.StatusSeen,
		Email:          &notification.EmailPayload{To: "owner@example.com", Subject: "s", Body: "b"},
		CreatedAt:      time.Now().UTC(),
	}
}

func TestChannelConsumer_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		sendErr    error
		maxRetries int
		wantCalls  int32
		wantReason notification.FailureReason
		wantRetry  int
	}{
		{
			name:       "permanent failure is dead-lettered without retry",
			sendErr:    notifier.Permanent(stderrors.New("chat not found")),
			maxRetries: 3,
			wantCalls:  1,
			wantReason: notification.ReasonPermanent,
			wantRetry:  0,
		},
		{
			name:       "transient failure exhausts retries",
			sendErr:    notifier.Transient(stderrors.New("connection reset")),
			maxRetries: 3,
			wantCalls:  4,
			wantReason: notification.ReasonRetriesExhausted,
			wantRetry:  3,
		},
		{
			name:       "unclassified error counts as transient",
			sendErr:    stderrors.New("something odd"),
			maxRetries: 1,
			wantCalls:  2,
			wantReason: notification.ReasonRetriesExhausted,
			wantRetry:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			sender := notifier.SenderFunc(func(ctx context.Context, job *notification.Job) error {
				calls.Add(1)
				return tt.sendErr
			})
			p := startPipeline(t, notification.ChannelEmail, sender, tt.maxRetries)

			if err := p.broker.Publish(context.Background(), emailJob("job-1")); err != nil {
				t.Fatalf("Publish() error = %v", err)
			}
			waitFor(t, "dead letter", func() bool { return p.dlq.Len() == 1 })
			p.stop()

			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("send calls = %d, want %d", got, tt.wantCalls)
			}
			f, err := p.dlq.GetByEventID(context.Background(), "job-1")
			if err != nil {
				t.Fatalf("GetByEventID() error = %v", err)
			}
			if f.Reason != tt.wantReason || f.RetryCount != tt.wantRetry {
				t.Errorf("dead letter = reason %s retries %d, want %s %d", f.Reason, f.RetryCount, tt.wantReason, tt.wantRetry)
			}
			if f.LastError == "" || f.AlertID != 9 || f.UserID != 3 || f.Channel != notification.ChannelEmail {
				t.Errorf("dead letter = %+v", f)
			}
			if len(f.Payload) == 0 {
				t.Error("dead letter payload is empty")
			}
		})
	}
}

func TestChannelConsumer_Success(t *testing.T) {
	var calls atomic.Int32
	sender := notifier.SenderFunc(func(ctx context.Context, job *notification.Job) error {
		calls.Add(1)
		return nil
	})
	p := startPipeline(t, notification.ChannelEmail, sender, 3)

	for _, id := range []string{"a", "b", "c"} {
		if err := p.broker.Publish(context.Background(), emailJob(id)); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	waitFor(t, "deliveries", func() bool { return calls.Load() == 3 })
	p.stop()

	if p.dlq.Len() != 0 {
		t.Errorf("dead letters = %d, want 0", p.dlq.Len())
	}
}

func TestChannelConsumer_FailuresAreIsolated(t *testing.T) {
	var delivered atomic.Int32
	sender := notifier.SenderFunc(func(ctx context.Context, job *notification.Job) error {
		if job.EventID == "bad" {
			return notifier.Permanent(stderrors.New("invalid recipient"))
		}
		delivered.Add(1)
		return nil
	})
	p := startPipeline(t, notification.ChannelEmail, sender, 3)

	for _, id := range []string{"good-1", "bad", "good-2"} {
		if err := p.broker.Publish(context.Background(), emailJob(id)); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	waitFor(t, "dead letter", func() bool { return p.dlq.Len() == 1 })
	waitFor(t, "good jobs", func() bool { return delivered.Load() == 2 })
	p.stop()

	if _, err := p.dlq.GetByEventID(context.Background(), "bad"); err != nil {
		t.Errorf("bad job not dead-lettered: %v", err)
	}
	if p.broker.Pending(notification.ChannelEmail) != 0 {
		t.Errorf("pending = %d, want 0", p.broker.Pending(notification.ChannelEmail))
	}
}

func TestToFailedNotification_Undecodable(t *testing.T) {
	d := &queue.Delivery{Channel: notification.ChannelChat, Body: []byte("not json")}

	f := toFailedNotification(notification.ChannelChat, d)

	if f.Reason != notification.ReasonUndeliverable {
		t.Errorf("reason = %s, want undeliverable", f.Reason)
	}
	if f.EventID == "" {
		t.Error("event id is empty")
	}
	if string(f.Payload) != `"not json"` {
		t.Errorf("payload = %s", f.Payload)
	}
}

func TestDeadLetterMonitor(t *testing.T) {
	if _, err := NewDeadLetterMonitor(testutil.NewMockDeadLetterRepository(), "every so often", testLogger()); err == nil {
		t.Error("NewDeadLetterMonitor() accepted an invalid schedule")
	}

	repo := testutil.NewMockDeadLetterRepository()
	if _, err := repo.Save(context.Background(), &notification.FailedNotification{EventID: "x", Channel: notification.ChannelChat}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	m, err := NewDeadLetterMonitor(repo, "@every 1m", testLogger())
	if err != nil {
		t.Fatalf("NewDeadLetterMonitor() error = %v", err)
	}
	counts := m.Report(context.Background())
	if counts[notification.ChannelChat] != 1 || counts[notification.ChannelEmail] != 0 {
		t.Errorf("Report() = %v", counts)
	}
}

func TestChannelConsumer_LogsFailedRequeue(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		wantLog string
	}{
		{name: "retry", sendErr: notifier.Transient(stderrors.New("timeout")), wantLog: "Failed to schedule retry"},
		{name: "dead letter", sendErr: notifier.Permanent(stderrors.New("bad address")), wantLog: "Failed to dead-letter job"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), "worker.log")
			log := logger.New(logger.Config{Level: "error", Format: "json", OutputPath: logPath})

			broker := queue.NewMemoryBroker(4, 0)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			deliveries, err := broker.Consume(ctx, notification.ChannelEmail)
			if err != nil {
				t.Fatalf("Consume() error = %v", err)
			}
			if err := broker.Publish(ctx, emailJob("job-1")); err != nil {
				t.Fatalf("Publish() error = %v", err)
			}
			var d *queue.Delivery
			select {
			case d = <-deliveries:
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for delivery")
			}
			// every settle path now fails with ErrBrokerClosed
			_ = broker.Close()

			sender := notifier.SenderFunc(func(ctx context.Context, job *notification.Job) error {
				return tt.sendErr
			})
			consumer := NewChannelConsumer(broker, notification.ChannelEmail, sender, 3, 1, log)
			consumer.handle(ctx, d)

			raw, err := os.ReadFile(logPath)
			if err != nil {
				t.Fatalf("read log: %v", err)
			}
			out := string(raw)
			if !strings.Contains(out, tt.wantLog) {
				t.Errorf("log missing %q:\n%s", tt.wantLog, out)
			}
			if !strings.Contains(out, "Failed to requeue job") || !strings.Contains(out, queue.ErrBrokerClosed.Error()) {
				t.Errorf("requeue failure was not logged:\n%s", out)
			}
		})
	}
}
