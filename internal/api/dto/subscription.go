package dto

import (
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/subscription"
)

// SubscriptionDTO represents a subscription in API responses
type SubscriptionDTO struct {
	ID           int64     `json:"id"`
	AlertID      int64     `json:"alertId"`
	UserID       int64     `json:"userId"`
	Active       bool      `json:"active"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// SubscribersDTO lists the users following an alert
type SubscribersDTO struct {
	AlertID int64   `json:"alertId"`
	UserIDs []int64 `json:"userIds"`
}

// ToSubscriptionDTO converts a domain subscription
func ToSubscriptionDTO(s *subscription.Subscription) SubscriptionDTO {
	return SubscriptionDTO{
		ID:           s.ID,
		AlertID:      s.AlertID,
		UserID:       s.UserID,
		Active:       s.Active,
		SubscribedAt: s.SubscribedAt,
	}
}
