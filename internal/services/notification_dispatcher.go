package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/domain/pet"
	"github.com/pratik-mahalle/petalert/internal/domain/subscription"
	"github.com/pratik-mahalle/petalert/internal/domain/user"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/metrics"
	"github.com/pratik-mahalle/petalert/internal/queue"
	"github.com/pratik-mahalle/petalert/internal/storage"
)

// NotificationDispatcher implements notification.Dispatcher
type NotificationDispatcher struct {
	subs      subscription.Service
	users     user.Directory
	pets      pet.Directory
	publisher queue.Publisher
	photos    storage.PhotoLinker
	formatter Formatter
	logger    *logger.Logger
}

// NewNotificationDispatcher creates a dispatcher. photos may be nil.
func NewNotificationDispatcher(
	subs subscription.Service,
	users user.Directory,
	pets pet.Directory,
	publisher queue.Publisher,
	photos storage.PhotoLinker,
	log *logger.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		subs:      subs,
		users:     users,
		pets:      pets,
		publisher: publisher,
		photos:    photos,
		logger:    log,
	}
}

// Dispatch enqueues one job per eligible channel of every active subscriber.
// A failure for one subscriber never stops the others; all failures are
// returned joined.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, change notification.StatusChange) error {
	subscriberIDs, err := d.subs.ActiveSubscribers(ctx, change.AlertID)
	if err != nil {
		return fmt.Errorf("failed to resolve subscribers of alert %d: %w", change.AlertID, err)
	}
	if len(subscriberIDs) == 0 {
		return nil
	}

	petName, photoURL := d.describePet(ctx, change)
	rendered := d.formatter.Format(Message{
		PetName:   petName,
		OldStatus: change.PreviousStatus,
		NewStatus: change.NewStatus,
		AlertID:   change.AlertID,
	})

	var errs []error
	enqueued := 0
	for _, userID := range subscriberIDs {
		profile, err := d.users.GetByID(ctx, userID)
		if err != nil {
			d.logger.WithFields(map[string]interface{}{
				"alert_id": change.AlertID,
				"user_id":  userID,
				"error":    err.Error(),
			}).Warn("Skipping subscriber without profile")
			errs = append(errs, fmt.Errorf("user %d: %w", userID, err))
			continue
		}

		for _, job := range d.jobsFor(profile, change, rendered, photoURL) {
			if err := d.publisher.Publish(ctx, job); err != nil {
				d.logger.WithFields(map[string]interface{}{
					"alert_id": change.AlertID,
					"user_id":  userID,
					"channel":  job.Channel,
					"event_id": job.EventID,
					"error":    err.Error(),
				}).Error("Failed to enqueue notification")
				errs = append(errs, fmt.Errorf("user %d %s: %w", userID, job.Channel, err))
				continue
			}
			metrics.RecordJobEnqueued(string(job.Channel))
			enqueued++
		}
	}

	d.logger.WithFields(map[string]interface{}{
		"alert_id":    change.AlertID,
		"subscribers": len(subscriberIDs),
		"jobs":        enqueued,
		"failures":    len(errs),
	}).Info("Notifications dispatched")

	return stderrors.Join(errs...)
}

func (d *NotificationDispatcher) describePet(ctx context.Context, change notification.StatusChange) (string, string) {
	p, err := d.pets.GetByID(ctx, change.PetID)
	if err != nil {
		d.logger.WithFields(map[string]interface{}{
			"alert_id": change.AlertID,
			"pet_id":   change.PetID,
			"error":    err.Error(),
		}).Warn("Pet lookup failed, using a generic name")
		return "", ""
	}

	if d.photos == nil || p.PhotoKey == "" {
		return p.Name, ""
	}
	url, err := d.photos.PhotoURL(ctx, p.PhotoKey)
	if err != nil {
		d.logger.WarnWithErr(err, "Failed to link pet photo")
		return p.Name, ""
	}
	return p.Name, url
}

func (d *NotificationDispatcher) jobsFor(u *user.User, change notification.StatusChange, r Rendered, photoURL string) []*notification.Job {
	now := time.Now().UTC()
	base := notification.Job{
		AlertEventID:   change.AlertEventID,
		UserID:         u.ID,
		AlertID:        change.AlertID,
		PreviousStatus: change.PreviousStatus,
		NewStatus:      change.NewStatus,
		CreatedAt:      now,
	}

	var jobs []*notification.Job
	if u.EmailEligible() {
		job := base
		job.EventID = uuid.NewString()
		job.Channel = notification.ChannelEmail
		job.Email = &notification.EmailPayload{To: u.Email, Subject: r.Subject, Body: r.Body}
		jobs = append(jobs, &job)
	}
	if u.ChatEligible() {
		job := base
		job.EventID = uuid.NewString()
		job.Channel = notification.ChannelChat
		job.Chat = &notification.ChatPayload{ChatID: u.ChatID, Message: r.Chat, PhotoURL: photoURL}
		jobs = append(jobs, &job)
	}
	return jobs
}
