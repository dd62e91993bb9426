package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pratik-mahalle/petalert/internal/domain/subscription"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
)

const subscriptionColumns = `id, alert_id, user_id, active, subscribed_at, updated_at`

// SubscriptionRepository implements subscription.Repository.
// Rows are deactivated instead of deleted so a pair keeps a single row.
type SubscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) subscription.Repository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	if s.ID == 0 {
		query := r.db.Rebind(`
			INSERT INTO subscriptions (alert_id, user_id, active, subscribed_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`)
		err := r.db.QueryRowxContext(ctx, query, s.AlertID, s.UserID, s.Active, s.SubscribedAt, s.UpdatedAt).Scan(&s.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return subscription.ErrAlreadySubscribed
			}
			return errors.DatabaseError("Failed to create subscription", err)
		}
		return nil
	}

	query := r.db.Rebind(`UPDATE subscriptions SET active = ?, subscribed_at = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, s.Active, s.SubscribedAt, s.UpdatedAt, s.ID)
	if err != nil {
		return errors.DatabaseError("Failed to update subscription", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Subscription")
	}
	return nil
}

func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID int64) ([]*subscription.Subscription, error) {
	subs := []*subscription.Subscription{}
	query := r.db.Rebind(`SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = ? ORDER BY subscribed_at DESC, id DESC`)
	if err := r.db.SelectContext(ctx, &subs, query, userID); err != nil {
		return nil, errors.DatabaseError("Failed to list subscriptions", err)
	}
	return subs, nil
}

func (r *SubscriptionRepository) FindActiveByAlert(ctx context.Context, alertID int64) ([]*subscription.Subscription, error) {
	subs := []*subscription.Subscription{}
	query := r.db.Rebind(`SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE alert_id = ? AND active = ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &subs, query, alertID, true); err != nil {
		return nil, errors.DatabaseError("Failed to list subscribers", err)
	}
	return subs, nil
}

func (r *SubscriptionRepository) FindFor(ctx context.Context, alertID, userID int64) (*subscription.Subscription, error) {
	var s subscription.Subscription
	query := r.db.Rebind(`SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE alert_id = ? AND user_id = ?`)
	err := r.db.GetContext(ctx, &s, query, alertID, userID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Subscription")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get subscription", err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) ExistsFor(ctx context.Context, alertID, userID int64) (bool, error) {
	var count int64
	query := r.db.Rebind(`SELECT COUNT(*) FROM subscriptions WHERE alert_id = ? AND user_id = ? AND active = ?`)
	if err := r.db.GetContext(ctx, &count, query, alertID, userID, true); err != nil {
		return false, errors.DatabaseError("Failed to check subscription", err)
	}
	return count > 0, nil
}
