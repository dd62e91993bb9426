package services

import (
	"context"
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/domain/subscription"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
)

// SubscriptionService implements subscription.Service
type SubscriptionService struct {
	repo   subscription.Repository
	alerts alert.Repository
	logger *logger.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo subscription.Repository, alerts alert.Repository, log *logger.Logger) subscription.Service {
	return &SubscriptionService{
		repo:   repo,
		alerts: alerts,
		logger: log,
	}
}

// Subscribe opts a user in to an alert. An inactive subscription is reactivated.
func (s *SubscriptionService) Subscribe(ctx context.Context, alertID, userID int64) (*subscription.Subscription, error) {
	a, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, subscription.ErrAlertClosed
	}

	now := time.Now().UTC()
	existing, err := s.repo.FindFor(ctx, alertID, userID)
	switch {
	case err == nil && existing.Active:
		return nil, subscription.ErrAlreadySubscribed
	case err == nil:
		existing.Active = true
		existing.SubscribedAt = now
		existing.UpdatedAt = now
		if err := s.repo.Save(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.WithFields(map[string]interface{}{
			"alert_id": alertID,
			"user_id":  userID,
		}).Info("Subscription reactivated")
		return existing, nil
	case !errors.IsNotFound(err):
		return nil, err
	}

	sub := &subscription.Subscription{
		AlertID:      alertID,
		UserID:       userID,
		Active:       true,
		SubscribedAt: now,
		UpdatedAt:    now,
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"alert_id": alertID,
		"user_id":  userID,
	}).Info("Subscription created")

	return sub, nil
}

// Unsubscribe deactivates the user's subscription to an alert
func (s *SubscriptionService) Unsubscribe(ctx context.Context, alertID, userID int64) error {
	existing, err := s.repo.FindFor(ctx, alertID, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return subscription.ErrSubscriptionNotFound
		}
		return err
	}
	if !existing.Active {
		return subscription.ErrSubscriptionNotFound
	}

	existing.Active = false
	existing.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, existing); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"alert_id": alertID,
		"user_id":  userID,
	}).Info("Subscription cancelled")

	return nil
}

// ActiveSubscribers returns the ids of users subscribed to an alert
func (s *SubscriptionService) ActiveSubscribers(ctx context.Context, alertID int64) ([]int64, error) {
	subs, err := s.repo.FindActiveByAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.UserID)
	}
	return ids, nil
}

// ListForUser returns every subscription of a user
func (s *SubscriptionService) ListForUser(ctx context.Context, userID int64) ([]*subscription.Subscription, error) {
	return s.repo.FindByUser(ctx, userID)
}
