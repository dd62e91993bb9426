package alert

import (
	"context"
	"time"
)

// EventKind classifies an audit event
type EventKind string

// Event kinds
const (
	EventCreated            EventKind = "created"
	EventStatusChanged      EventKind = "status_changed"
	EventTitleChanged       EventKind = "title_changed"
	EventDescriptionChanged EventKind = "description_changed"
	EventClosure            EventKind = "closure"
)

// Event is an immutable audit record of one change to an alert
type Event struct {
	ID             string        `json:"id"`
	AlertID        int64         `json:"alert_id"`
	Kind           EventKind     `json:"kind"`
	PreviousStatus Status        `json:"previous_status,omitempty"`
	NewStatus      Status        `json:"new_status,omitempty"`
	OldValue       string        `json:"old_value,omitempty"`
	NewValue       string        `json:"new_value,omitempty"`
	Location       *Location     `json:"location,omitempty"`
	ClosureReason  ClosureReason `json:"closure_reason,omitempty"`
	ActorID        int64         `json:"actor_id"`
	CreatedAt      time.Time     `json:"created_at"`
}

// IsStatusEvent reports whether the event records a status change
func (e *Event) IsStatusEvent() bool {
	return e.Kind == EventStatusChanged || e.Kind == EventClosure
}

// EventRepository is the append-only event log
type EventRepository interface {
	// Append records an event; prior entries are never touched
	Append(ctx context.Context, ev *Event) error

	// HistoryFor returns the events of an alert, newest first
	HistoryFor(ctx context.Context, alertID int64) ([]*Event, error)

	// LatestFor returns the most recent event of an alert
	LatestFor(ctx context.Context, alertID int64) (*Event, error)
}

// EventSink receives committed events for consumers outside the service
type EventSink interface {
	Publish(ctx context.Context, ev *Event) error
}
