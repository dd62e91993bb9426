package services

import (
	"context"

	"github.com/pratik-mahalle/petalert/internal/domain/notification"
)

// DeadLetterService implements notification.DeadLetterService
type DeadLetterService struct {
	repo notification.DeadLetterRepository
}

// NewDeadLetterService creates a new dead letter service
func NewDeadLetterService(repo notification.DeadLetterRepository) notification.DeadLetterService {
	return &DeadLetterService{repo: repo}
}

// Get retrieves a failed notification by its job event id
func (s *DeadLetterService) Get(ctx context.Context, eventID string) (*notification.FailedNotification, error) {
	return s.repo.GetByEventID(ctx, eventID)
}

// List retrieves failed notifications, newest first
func (s *DeadLetterService) List(ctx context.Context, filter notification.DeadLetterFilter, limit, offset int) ([]*notification.FailedNotification, int64, error) {
	return s.repo.List(ctx, filter, limit, offset)
}
