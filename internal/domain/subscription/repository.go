package subscription

import "context"

// Repository defines the interface for subscription data access
type Repository interface {
	// Save inserts a subscription when ID is zero, otherwise updates its active flag
	Save(ctx context.Context, s *Subscription) error

	// FindByUser returns every subscription of a user, active or not
	FindByUser(ctx context.Context, userID int64) ([]*Subscription, error)

	// FindActiveByAlert returns the active subscriptions of an alert
	FindActiveByAlert(ctx context.Context, alertID int64) ([]*Subscription, error)

	// FindFor returns the subscription row of an (alert, user) pair
	FindFor(ctx context.Context, alertID, userID int64) (*Subscription, error)

	// ExistsFor reports whether the pair has an active subscription
	ExistsFor(ctx context.Context, alertID, userID int64) (bool, error)
}
