package notification

import "context"

// Dispatcher fans a status change out to the subscribers' channels
type Dispatcher interface {
	Dispatch(ctx context.Context, change StatusChange) error
}

// DeadLetterService exposes dead-lettered notifications to operators
type DeadLetterService interface {
	Get(ctx context.Context, eventID string) (*FailedNotification, error)
	List(ctx context.Context, filter DeadLetterFilter, limit, offset int) ([]*FailedNotification, int64, error)
}
