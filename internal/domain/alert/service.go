package alert

import "context"

// CreateInput carries the fields of a new report
type CreateInput struct {
	PetID       int64
	Title       string
	Description string
}

// EditInput carries optional title/description changes
type EditInput struct {
	Title       *string
	Description *string
}

// Service defines the interface for alert business logic
type Service interface {
	// Create reports a new alert for a pet and subscribes the reporter
	Create(ctx context.Context, actorID int64, in CreateInput) (*Alert, error)

	// GetByID retrieves an alert by ID
	GetByID(ctx context.Context, id int64) (*Alert, error)

	// List retrieves alerts with filters and pagination
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Alert, int64, error)

	// ListByPet returns the alert history of a pet
	ListByPet(ctx context.Context, petID int64) ([]*Alert, error)

	// Edit changes the title and/or description of an OPENED alert
	Edit(ctx context.Context, actorID, id int64, in EditInput) (*Alert, error)

	// ChangeStatus applies a state machine transition and dispatches notifications
	ChangeStatus(ctx context.Context, id int64, cmd TransitionCommand) (*Alert, error)

	// MarkAsSeen, MarkAsSafe and MarkAsClosed are shorthands for ChangeStatus
	MarkAsSeen(ctx context.Context, actorID, id int64, loc *Location) (*Alert, error)
	MarkAsSafe(ctx context.Context, actorID, id int64, loc *Location) (*Alert, error)
	MarkAsClosed(ctx context.Context, actorID, id int64, reason ClosureReason) (*Alert, error)

	// History returns the audit events of an alert, newest first
	History(ctx context.Context, id int64) ([]*Event, error)

	// LatestEvent returns the most recent audit event of an alert
	LatestEvent(ctx context.Context, id int64) (*Event, error)
}
