package alert

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
)

// transitions[from][to] is true when the move is allowed.
// SEEN -> SEEN is accepted while OPENED -> OPENED and SAFE -> SAFE are not.
var transitions = map[Status]map[Status]bool{
	StatusOpened: {StatusSeen: true, StatusSafe: true, StatusClosed: true},
	StatusSeen:   {StatusSeen: true, StatusSafe: true, StatusClosed: true},
	StatusSafe:   {StatusClosed: true},
	StatusClosed: {},
}

// CanTransition reports whether the table allows from -> to
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// AllowedTargets returns the statuses reachable from s
func AllowedTargets(s Status) []Status {
	var out []Status
	for _, to := range Statuses {
		if CanTransition(s, to) {
			out = append(out, to)
		}
	}
	return out
}

// TransitionCommand describes a requested status change
type TransitionCommand struct {
	Target        Status
	ActorID       int64
	Location      *Location
	ClosureReason ClosureReason
	At            time.Time
}

// New builds an OPENED alert and its creation event
func New(petID, ownerID int64, title, description string, at time.Time) (Alert, Event) {
	a := Alert{
		PetID:       petID,
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      StatusOpened,
		Version:     1,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	ev := Event{
		ID:        uuid.NewString(),
		Kind:      EventCreated,
		NewStatus: StatusOpened,
		NewValue:  title,
		ActorID:   ownerID,
		CreatedAt: at,
	}
	return a, ev
}

// Transition validates cmd against the current status and returns the
// updated alert together with the event recording the change. The input
// alert is never modified.
func Transition(a Alert, cmd TransitionCommand) (Alert, Event, error) {
	if a.Status.IsTerminal() {
		return a, Event{}, &TransitionError{From: a.Status, To: cmd.Target}
	}
	if cmd.Target == StatusClosed && cmd.ClosureReason == "" {
		return a, Event{}, ErrMissingClosureReason
	}
	if cmd.Target != StatusClosed && cmd.ClosureReason != "" {
		return a, Event{}, ErrClosureReasonNotAllowed
	}
	if cmd.ClosureReason != "" && !cmd.ClosureReason.Valid() {
		return a, Event{}, errors.ValidationError("Unknown closure reason", map[string]string{"closure_reason": string(cmd.ClosureReason)})
	}
	if !CanTransition(a.Status, cmd.Target) {
		return a, Event{}, &TransitionError{From: a.Status, To: cmd.Target}
	}

	next := a
	next.Status = cmd.Target
	next.UpdatedAt = cmd.At

	kind := EventStatusChanged
	if cmd.Target == StatusClosed {
		kind = EventClosure
	}

	ev := Event{
		ID:             uuid.NewString(),
		AlertID:        a.ID,
		Kind:           kind,
		PreviousStatus: a.Status,
		NewStatus:      cmd.Target,
		Location:       cmd.Location,
		ClosureReason:  cmd.ClosureReason,
		ActorID:        cmd.ActorID,
		CreatedAt:      cmd.At,
	}
	return next, ev, nil
}

// EditTitle changes the title of an OPENED alert
func EditTitle(a Alert, title string, actorID int64, at time.Time) (Alert, Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return a, Event{}, errors.ValidationError("Title must not be empty", nil)
	}
	return edit(a, EventTitleChanged, a.Title, title, actorID, at)
}

// EditDescription changes the description of an OPENED alert
func EditDescription(a Alert, description string, actorID int64, at time.Time) (Alert, Event, error) {
	return edit(a, EventDescriptionChanged, a.Description, strings.TrimSpace(description), actorID, at)
}

func edit(a Alert, kind EventKind, oldValue, newValue string, actorID int64, at time.Time) (Alert, Event, error) {
	if a.Status != StatusOpened {
		return a, Event{}, ErrModificationNotAllowed
	}
	if oldValue == newValue {
		return a, Event{}, errors.ValidationError("New value is identical to the current one", nil)
	}

	next := a
	if kind == EventTitleChanged {
		next.Title = newValue
	} else {
		next.Description = newValue
	}
	next.UpdatedAt = at

	ev := Event{
		ID:        uuid.NewString(),
		AlertID:   a.ID,
		Kind:      kind,
		OldValue:  oldValue,
		NewValue:  newValue,
		ActorID:   actorID,
		CreatedAt: at,
	}
	return next, ev, nil
}
