package subscription

import "context"

// Service defines the subscription registry
type Service interface {
	Subscribe(ctx context.Context, alertID, userID int64) (*Subscription, error)
	Unsubscribe(ctx context.Context, alertID, userID int64) error
	ActiveSubscribers(ctx context.Context, alertID int64) ([]int64, error)
	ListForUser(ctx context.Context, userID int64) ([]*Subscription, error)
}
