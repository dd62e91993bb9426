package alert

import (
	"fmt"
	"net/http"

	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
)

// Error codes
const (
	ErrCodeInvalidTransition       = "INVALID_TRANSITION"
	ErrCodeMissingClosureReason    = "MISSING_CLOSURE_REASON"
	ErrCodeClosureReasonNotAllowed = "CLOSURE_REASON_NOT_ALLOWED"
	ErrCodeModificationNotAllowed  = "MODIFICATION_NOT_ALLOWED"
	ErrCodeActiveAlertExists       = "ACTIVE_ALERT_EXISTS"
	ErrCodeConcurrentModification  = "CONCURRENT_MODIFICATION"
)

var (
	ErrInvalidTransition       = errors.New(ErrCodeInvalidTransition, "Invalid status transition", http.StatusConflict)
	ErrMissingClosureReason    = errors.New(ErrCodeMissingClosureReason, "A closure reason is required to close an alert", http.StatusBadRequest)
	ErrClosureReasonNotAllowed = errors.New(ErrCodeClosureReasonNotAllowed, "A closure reason is only accepted when closing an alert", http.StatusBadRequest)
	ErrModificationNotAllowed  = errors.New(ErrCodeModificationNotAllowed, "Alert can only be modified while it is opened", http.StatusConflict)
	ErrActiveAlertExists       = errors.New(ErrCodeActiveAlertExists, "An active alert already exists for this pet", http.StatusConflict)
	ErrConcurrentModification  = errors.New(ErrCodeConcurrentModification, "Alert was modified by another request", http.StatusConflict)
)

// TransitionError reports a transition the table does not allow
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// StaleStateError is returned when the alert changed between read and write.
// Current holds the state that won.
type StaleStateError struct {
	Current *Alert
}

func (e *StaleStateError) Error() string {
	if e.Current == nil {
		return "alert was modified concurrently"
	}
	return fmt.Sprintf("alert %d was modified concurrently, now %s at version %d",
		e.Current.ID, e.Current.Status, e.Current.Version)
}

func (e *StaleStateError) Unwrap() error {
	return ErrConcurrentModification
}
