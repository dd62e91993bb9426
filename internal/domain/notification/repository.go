package notification

import "context"

// DeadLetterRepository stores failed notifications. Entries are never
// removed or retried by the system.
type DeadLetterRepository interface {
	// Save records a failed notification; a second save for the same
	// event id is ignored and reports inserted=false
	Save(ctx context.Context, f *FailedNotification) (inserted bool, err error)

	// GetByEventID retrieves a failed notification by its job event id
	GetByEventID(ctx context.Context, eventID string) (*FailedNotification, error)

	// List retrieves failed notifications, newest first
	List(ctx context.Context, filter DeadLetterFilter, limit, offset int) ([]*FailedNotification, int64, error)

	// CountByChannel returns the number of stored entries per channel
	CountByChannel(ctx context.Context) (map[Channel]int64, error)
}
