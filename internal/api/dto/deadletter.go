package dto

import (
	"encoding/json"
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/notification"
)

// DeadLetterDTO is a failed notification as shown to operators
type DeadLetterDTO struct {
	EventID    string          `json:"eventId"`
	Channel    string          `json:"channel"`
	UserID     int64           `json:"userId"`
	AlertID    int64           `json:"alertId"`
	Reason     string          `json:"reason"`
	LastError  string          `json:"lastError,omitempty"`
	RetryCount int             `json:"retryCount"`
	Payload    json.RawMessage `json:"payload,omitempty" swaggertype:"object"`
	FailedAt   time.Time       `json:"failedAt"`
}

// ToDeadLetterDTO converts a failed notification
func ToDeadLetterDTO(f *notification.FailedNotification) DeadLetterDTO {
	return DeadLetterDTO{
		EventID:    f.EventID,
		Channel:    string(f.Channel),
		UserID:     f.UserID,
		AlertID:    f.AlertID,
		Reason:     string(f.Reason),
		LastError:  f.LastError,
		RetryCount: f.RetryCount,
		Payload:    f.Payload,
		FailedAt:   f.FailedAt,
	}
}
