package alert

import "context"

// Repository defines the interface for alert data access.
// Every mutation is written together with its event in one atomic unit.
type Repository interface {
	// Create inserts the alert and its creation event, setting a.ID and ev.AlertID
	Create(ctx context.Context, a *Alert, ev *Event) error

	// Update persists a new value of an existing alert and the events that
	// produced it, all or nothing. It fails with a StaleStateError if the
	// stored version differs from expectedVersion.
	Update(ctx context.Context, a *Alert, expectedVersion int64, events ...*Event) error

	// GetByID retrieves an alert by ID
	GetByID(ctx context.Context, id int64) (*Alert, error)

	// ListByPet returns every alert ever raised for a pet, newest first
	ListByPet(ctx context.Context, petID int64) ([]*Alert, error)

	// ExistsActiveForPet reports whether the pet has a non-closed alert
	ExistsActiveForPet(ctx context.Context, petID int64) (bool, error)

	// List retrieves alerts with filters and pagination
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Alert, int64, error)
}
