package subscription

import "time"

// Subscription is a user's opt-in to notifications for one alert
type Subscription struct {
	ID           int64     `json:"id" db:"id"`
	AlertID      int64     `json:"alert_id" db:"alert_id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Active       bool      `json:"active" db:"active"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
