package alert

import "time"

// Status is the lifecycle state of an alert
type Status string

// Alert statuses
const (
	StatusOpened Status = "OPENED"
	StatusSeen   Status = "SEEN"
	StatusSafe   Status = "SAFE"
	StatusClosed Status = "CLOSED"
)

// Statuses lists every status in lifecycle order
var Statuses = []Status{StatusOpened, StatusSeen, StatusSafe, StatusClosed}

// ParseStatus accepts both the stored form (SEEN) and the command form (seen)
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "OPENED", "opened", "open", "OPEN":
		return StatusOpened, true
	case "SEEN", "seen":
		return StatusSeen, true
	case "SAFE", "safe":
		return StatusSafe, true
	case "CLOSED", "closed":
		return StatusClosed, true
	}
	return "", false
}

// IsTerminal reports whether no transition can leave the status
func (s Status) IsTerminal() bool {
	return s == StatusClosed
}

// ClosureReason explains why an alert was closed
type ClosureReason string

// Closure reasons
const (
	ClosureFounded    ClosureReason = "FOUNDED"
	ClosureCancelled  ClosureReason = "CANCELLED"
	ClosureDuplicated ClosureReason = "DUPLICATED"
)

// Valid reports whether r is a known closure reason
func (r ClosureReason) Valid() bool {
	switch r {
	case ClosureFounded, ClosureCancelled, ClosureDuplicated:
		return true
	}
	return false
}

// Location is where a pet was reported during a status change
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Alert is a lost/found pet report
type Alert struct {
	ID          int64     `json:"id" db:"id"`
	PetID       int64     `json:"pet_id" db:"pet_id"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Status      Status    `json:"status" db:"status"`
	Version     int64     `json:"version" db:"version"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Filter contains alert filtering options
type Filter struct {
	PetID   int64
	OwnerID int64
	Status  Status
}
