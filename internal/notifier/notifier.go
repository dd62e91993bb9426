// Package notifier delivers rendered notification jobs to external providers.
package notifier

import (
	"context"
	"errors"
	"strings"

	"github.com/pratik-mahalle/petalert/internal/domain/notification"
)

// Sender delivers one job on its channel
type Sender interface {
	Send(ctx context.Context, job *notification.Job) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(ctx context.Context, job *notification.Job) error

func (f SenderFunc) Send(ctx context.Context, job *notification.Job) error {
	return f(ctx, job)
}

// DeliveryError tags a provider failure as permanent or transient.
// Permanent failures are dead-lettered without further attempts.
type DeliveryError struct {
	Permanent bool
	Err       error
}

func (e *DeliveryError) Error() string {
	if e.Permanent {
		return "permanent delivery failure: " + e.Err.Error()
	}
	return "transient delivery failure: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &DeliveryError{Permanent: true, Err: err}
}

// Transient marks err as retryable
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &DeliveryError{Permanent: false, Err: err}
}

// IsPermanent reports whether err was classified as permanent.
// Unclassified errors are treated as transient.
func IsPermanent(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de) && de.Permanent
}

var permanentMarkers = []string{
	"not verified",
	"validation error",
	"validation_error",
	"invalid",
	"malformed",
	"recipient is required",
}

// ClassifyMessage tags err by the wording of providers that only return
// plain errors. Anything not recognized as permanent is transient.
func ClassifyMessage(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return Permanent(err)
		}
	}
	return Transient(err)
}
