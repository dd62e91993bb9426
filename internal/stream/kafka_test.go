package stream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/domain/alert"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaEventSink_Publish(t *testing.T) {
	w := &fakeWriter{}
	sink := NewKafkaEventSinkWithWriter(w)

	ev := &alert.Event{
		ID:             "ev-1",
		AlertID:        17,
		Kind:           alert.EventStatusChanged,
		PreviousStatus: alert.StatusOpened,
		NewStatus:      alert.StatusSeen,
		CreatedAt:      time.Now().UTC(),
	}
	if err := sink.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "17" {
		t.Errorf("key = %s, want 17", msg.Key)
	}

	var decoded alert.Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("value is not an event: %v", err)
	}
	if decoded.NewStatus != alert.StatusSeen {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestKafkaEventSink_WriteError(t *testing.T) {
	sink := NewKafkaEventSinkWithWriter(&fakeWriter{err: errors.New("no brokers")})
	if err := sink.Publish(context.Background(), &alert.Event{ID: "ev-2"}); err == nil {
		t.Error("Publish() expected error")
	}
}

func TestNewEventSink_Disabled(t *testing.T) {
	if _, ok := NewEventSink(config.StreamConfig{Enabled: false}).(NopSink); !ok {
		t.Error("disabled stream should return NopSink")
	}
}
