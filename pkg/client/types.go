package client

import (
	"encoding/json"
	"time"
)

// User represents an account and its notification preferences
type User struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"fullName,omitempty"`
	Role               string    `json:"role"`
	EmailNotifications bool      `json:"emailNotifications"`
	ChatEnabled        bool      `json:"chatEnabled"`
	ChatID             string    `json:"chatId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Pet is an animal alerts can be raised for
type Pet struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Name      string    `json:"name"`
	Species   string    `json:"species,omitempty"`
	PhotoKey  string    `json:"photoKey,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Alert is a lost pet report
type Alert struct {
	ID          int64     `json:"id"`
	PetID       int64     `json:"petId"`
	OwnerID     int64     `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"` // OPENED, SEEN, SAFE, CLOSED
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Location is a reported position
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AlertEvent is one entry of an alert's audit history
type AlertEvent struct {
	ID             string    `json:"id"`
	AlertID        int64     `json:"alertId"`
	Kind           string    `json:"kind"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	NewStatus      string    `json:"newStatus,omitempty"`
	OldValue       string    `json:"oldValue,omitempty"`
	NewValue       string    `json:"newValue,omitempty"`
	Location       *Location `json:"location,omitempty"`
	ClosureReason  string    `json:"closureReason,omitempty"`
	ActorID        int64     `json:"actorId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Subscription links a user to an alert
type Subscription struct {
	ID           int64     `json:"id"`
	AlertID      int64     `json:"alertId"`
	UserID       int64     `json:"userId"`
	Active       bool      `json:"active"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// Subscribers lists the users following an alert
type Subscribers struct {
	AlertID int64   `json:"alertId"`
	UserIDs []int64 `json:"userIds"`
}

// DeadLetter is a notification that could not be delivered
type DeadLetter struct {
	EventID    string          `json:"eventId"`
	Channel    string          `json:"channel"`
	UserID     int64           `json:"userId"`
	AlertID    int64           `json:"alertId"`
	Reason     string          `json:"reason"`
	LastError  string          `json:"lastError,omitempty"`
	RetryCount int             `json:"retryCount"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	FailedAt   time.Time       `json:"failedAt"`
}

// ListOptions contains common pagination options
type ListOptions struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
}

// Page is one page of a paginated listing
type Page[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}
