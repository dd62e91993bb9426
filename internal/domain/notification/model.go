package notification

import (
	"encoding/json"
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/alert"
)

// Channel represents a notification channel
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelChat  Channel = "chat"
)

// Channels lists every delivery channel
var Channels = []Channel{ChannelEmail, ChannelChat}

// ParseChannel validates a channel name
func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case ChannelEmail, ChannelChat:
		return Channel(s), true
	}
	return "", false
}

// EmailPayload is the rendered email for one recipient
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ChatPayload is the rendered chat message for one recipient
type ChatPayload struct {
	ChatID   string `json:"chat_id"`
	Message  string `json:"message"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Job is one notification to deliver on one channel.
// EventID is unique per job and doubles as the queue message id.
type Job struct {
	EventID        string        `json:"event_id"`
	AlertEventID   string        `json:"alert_event_id"`
	Channel        Channel       `json:"channel"`
	UserID         int64         `json:"user_id"`
	AlertID        int64         `json:"alert_id"`
	PreviousStatus alert.Status  `json:"previous_status"`
	NewStatus      alert.Status  `json:"new_status"`
	Email          *EmailPayload `json:"email,omitempty"`
	Chat           *ChatPayload  `json:"chat,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	RetryCount     int           `json:"retry_count"`
}

// Encode serializes the job for the queue
func (j *Job) Encode() ([]byte, error) {
	return json.Marshal(j)
}

// DecodeJob parses a queued job
func DecodeJob(data []byte) (*Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// StatusChange is what the dispatcher receives after a committed transition
type StatusChange struct {
	AlertID        int64
	PetID          int64
	AlertEventID   string
	PreviousStatus alert.Status
	NewStatus      alert.Status
	OccurredAt     time.Time
}

// FailureReason explains why a job was dead-lettered
type FailureReason string

const (
	ReasonPermanent        FailureReason = "permanent"
	ReasonRetriesExhausted FailureReason = "retries_exhausted"
	ReasonUndeliverable    FailureReason = "undeliverable"
)

// FailedNotification is a dead-lettered job kept for operators
type FailedNotification struct {
	ID         int64           `json:"id" db:"id"`
	EventID    string          `json:"event_id" db:"event_id"`
	Channel    Channel         `json:"channel" db:"channel"`
	UserID     int64           `json:"user_id" db:"user_id"`
	AlertID    int64           `json:"alert_id" db:"alert_id"`
	Reason     FailureReason   `json:"reason" db:"reason"`
	LastError  string          `json:"last_error" db:"last_error"`
	RetryCount int             `json:"retry_count" db:"retry_count"`
	Payload    json.RawMessage `json:"payload" db:"-"`
	FailedAt   time.Time       `json:"failed_at" db:"failed_at"`
}

// DeadLetterFilter contains failed notification filtering options
type DeadLetterFilter struct {
	Channel Channel
	AlertID int64
}
