package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/domain/pet"
	"github.com/pratik-mahalle/petalert/internal/domain/subscription"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/metrics"
)

// AlertService implements alert.Service
type AlertService struct {
	repo       alert.Repository
	events     alert.EventRepository
	pets       pet.Directory
	subs       subscription.Service
	dispatcher notification.Dispatcher
	sink       alert.EventSink
	logger     *logger.Logger
	now        func() time.Time
}

// NewAlertService creates a new alert service. sink may be nil.
func NewAlertService(
	repo alert.Repository,
	events alert.EventRepository,
	pets pet.Directory,
	subs subscription.Service,
	dispatcher notification.Dispatcher,
	sink alert.EventSink,
	log *logger.Logger,
) alert.Service {
	return &AlertService{
		repo:       repo,
		events:     events,
		pets:       pets,
		subs:       subs,
		dispatcher: dispatcher,
		sink:       sink,
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create reports a new alert for a pet and subscribes the reporter
func (s *AlertService) Create(ctx context.Context, actorID int64, in alert.CreateInput) (*alert.Alert, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.ValidationError("Title must not be empty", map[string]string{"title": "required"})
	}

	if _, err := s.pets.GetByID(ctx, in.PetID); err != nil {
		return nil, err
	}

	active, err := s.repo.ExistsActiveForPet(ctx, in.PetID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, alert.ErrActiveAlertExists
	}

	a, ev := alert.New(in.PetID, actorID, title, strings.TrimSpace(in.Description), s.now())
	if err := s.repo.Create(ctx, &a, &ev); err != nil {
		if !errors.Is(err, alert.ErrActiveAlertExists) {
			s.logger.ErrorWithErr(err, "Failed to create alert")
		}
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"alert_id": a.ID,
		"pet_id":   a.PetID,
		"owner_id": a.OwnerID,
	}).Info("Alert created")

	s.publish(ctx, &ev)

	if _, err := s.subs.Subscribe(ctx, a.ID, actorID); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"alert_id": a.ID,
			"user_id":  actorID,
			"error":    err.Error(),
		}).Warn("Failed to subscribe reporter to own alert")
	}

	return &a, nil
}

// GetByID retrieves an alert by ID
func (s *AlertService) GetByID(ctx context.Context, id int64) (*alert.Alert, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves alerts with filters and pagination
func (s *AlertService) List(ctx context.Context, filter alert.Filter, limit, offset int) ([]*alert.Alert, int64, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// ListByPet returns the alert history of a pet
func (s *AlertService) ListByPet(ctx context.Context, petID int64) ([]*alert.Alert, error) {
	return s.repo.ListByPet(ctx, petID)
}

// Edit changes the title and/or description of an OPENED alert.
// Both changes are validated before anything is written and are then
// committed together, one event per changed field.
func (s *AlertService) Edit(ctx context.Context, actorID, id int64, in alert.EditInput) (*alert.Alert, error) {
	if in.Title == nil && in.Description == nil {
		return nil, errors.ValidationError("Nothing to update", nil)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	at := s.now()
	next := *current
	var events []*alert.Event

	if in.Title != nil {
		edited, ev, err := alert.EditTitle(next, *in.Title, actorID, at)
		if err != nil {
			return nil, err
		}
		next = edited
		events = append(events, &ev)
	}

	if in.Description != nil {
		edited, ev, err := alert.EditDescription(next, *in.Description, actorID, at)
		if err != nil {
			return nil, err
		}
		next = edited
		events = append(events, &ev)
	}

	if current, err = s.commit(ctx, current, next, events...); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"alert_id": id,
		"actor_id": actorID,
	}).Info("Alert edited")

	return current, nil
}

// ChangeStatus applies a state machine transition, then notifies subscribers.
// A rejected transition leaves the alert and its history untouched.
func (s *AlertService) ChangeStatus(ctx context.Context, id int64, cmd alert.TransitionCommand) (*alert.Alert, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.At.IsZero() {
		cmd.At = s.now()
	}

	next, ev, err := alert.Transition(*current, cmd)
	if err != nil {
		metrics.RecordTransition(string(current.Status), string(cmd.Target), "rejected")
		return nil, err
	}

	updated, err := s.commit(ctx, current, next, &ev)
	if err != nil {
		var stale *alert.StaleStateError
		if stderrors.As(err, &stale) {
			metrics.RecordTransition(string(current.Status), string(cmd.Target), "conflict")
			s.logger.WithFields(map[string]interface{}{
				"alert_id": id,
				"target":   cmd.Target,
			}).Warn("Lost concurrent status change")
		}
		return nil, err
	}

	metrics.RecordTransition(string(ev.PreviousStatus), string(ev.NewStatus), "ok")
	s.logger.WithFields(map[string]interface{}{
		"alert_id": id,
		"from":     ev.PreviousStatus,
		"to":       ev.NewStatus,
		"actor_id": cmd.ActorID,
	}).Info("Alert status changed")

	change := notification.StatusChange{
		AlertID:        updated.ID,
		PetID:          updated.PetID,
		AlertEventID:   ev.ID,
		PreviousStatus: ev.PreviousStatus,
		NewStatus:      ev.NewStatus,
		OccurredAt:     ev.CreatedAt,
	}
	if err := s.dispatcher.Dispatch(ctx, change); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"alert_id": id,
			"event_id": ev.ID,
			"error":    err.Error(),
		}).Error("Some notifications could not be enqueued")
	}

	return updated, nil
}

// MarkAsSeen records a sighting
func (s *AlertService) MarkAsSeen(ctx context.Context, actorID, id int64, loc *alert.Location) (*alert.Alert, error) {
	return s.ChangeStatus(ctx, id, alert.TransitionCommand{Target: alert.StatusSeen, ActorID: actorID, Location: loc})
}

// MarkAsSafe records that the pet is safe
func (s *AlertService) MarkAsSafe(ctx context.Context, actorID, id int64, loc *alert.Location) (*alert.Alert, error) {
	return s.ChangeStatus(ctx, id, alert.TransitionCommand{Target: alert.StatusSafe, ActorID: actorID, Location: loc})
}

// MarkAsClosed closes the alert for the given reason
func (s *AlertService) MarkAsClosed(ctx context.Context, actorID, id int64, reason alert.ClosureReason) (*alert.Alert, error) {
	return s.ChangeStatus(ctx, id, alert.TransitionCommand{Target: alert.StatusClosed, ActorID: actorID, ClosureReason: reason})
}

// History returns the audit events of an alert, newest first
func (s *AlertService) History(ctx context.Context, id int64) ([]*alert.Event, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.events.HistoryFor(ctx, id)
}

// LatestEvent returns the most recent audit event of an alert
func (s *AlertService) LatestEvent(ctx context.Context, id int64) (*alert.Event, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.events.LatestFor(ctx, id)
}

// commit persists next and its events against the version read in current
func (s *AlertService) commit(ctx context.Context, current *alert.Alert, next alert.Alert, events ...*alert.Event) (*alert.Alert, error) {
	next.Version = current.Version + 1
	if err := s.repo.Update(ctx, &next, current.Version, events...); err != nil {
		return nil, err
	}
	for _, ev := range events {
		s.publish(ctx, ev)
	}
	return &next, nil
}

func (s *AlertService) publish(ctx context.Context, ev *alert.Event) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Publish(ctx, ev); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"alert_id": ev.AlertID,
			"event_id": ev.ID,
			"error":    err.Error(),
		}).Warn("Failed to stream alert event")
	}
}
