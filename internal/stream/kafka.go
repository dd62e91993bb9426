// Package stream publishes committed alert events to Kafka for downstream
// consumers such as analytics and search indexing.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/domain/alert"
)

// MessageWriter is the subset of kafka.Writer used by the sink
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventSink implements alert.EventSink
type KafkaEventSink struct {
	writer MessageWriter
}

// NewKafkaEventSink creates a synchronous writer keyed by alert id so
// events of one alert stay ordered within a partition
func NewKafkaEventSink(cfg config.StreamConfig) *KafkaEventSink {
	return NewKafkaEventSinkWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 5 * time.Second,
		RequiredAcks: kafka.RequireOne,
	})
}

// NewKafkaEventSinkWithWriter wraps an existing writer
func NewKafkaEventSinkWithWriter(w MessageWriter) *KafkaEventSink {
	return &KafkaEventSink{writer: w}
}

func (s *KafkaEventSink) Publish(ctx context.Context, ev *alert.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.AlertID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.ID)},
			{Key: "kind", Value: []byte(ev.Kind)},
		},
		Time: ev.CreatedAt,
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write alert event %s: %w", ev.ID, err)
	}
	return nil
}

// Close flushes and closes the writer
func (s *KafkaEventSink) Close() error {
	return s.writer.Close()
}

// NopSink discards events when streaming is disabled
type NopSink struct{}

func (NopSink) Publish(ctx context.Context, ev *alert.Event) error { return nil }

// NewEventSink returns a Kafka sink when cfg enables streaming, otherwise a NopSink
func NewEventSink(cfg config.StreamConfig) alert.EventSink {
	if !cfg.Enabled {
		return NopSink{}
	}
	return NewKafkaEventSink(cfg)
}
