package services

import (
	"fmt"
	"strings"

	"github.com/pratik-mahalle/petalert/internal/domain/alert"
)

// Message is the input of the notification templates
type Message struct {
	PetName   string
	OldStatus alert.Status
	NewStatus alert.Status
	AlertID   int64
}

// Rendered holds the channel texts for one status change
type Rendered struct {
	Subject string
	Body    string
	Chat    string
}

// Formatter renders status changes from fixed templates. It has no
// dependencies and the same Message always renders the same text.
type Formatter struct{}

var statusLabels = map[alert.Status]string{
	alert.StatusOpened: "missing",
	alert.StatusSeen:   "seen",
	alert.StatusSafe:   "safe",
	alert.StatusClosed: "closed",
}

func statusLabel(s alert.Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return strings.ToLower(string(s))
}

func headline(petName string, s alert.Status) string {
	switch s {
	case alert.StatusSeen:
		return fmt.Sprintf("Someone has seen %s.", petName)
	case alert.StatusSafe:
		return fmt.Sprintf("%s is safe.", petName)
	case alert.StatusClosed:
		return fmt.Sprintf("The alert for %s has been closed.", petName)
	default:
		return fmt.Sprintf("%s has been reported missing.", petName)
	}
}

// Format renders m for every channel
func (Formatter) Format(m Message) Rendered {
	petName := strings.TrimSpace(m.PetName)
	if petName == "" {
		petName = "Your pet"
	}

	line := headline(petName, m.NewStatus)

	return Rendered{
		Subject: fmt.Sprintf("[PetAlert] %s is %s", petName, statusLabel(m.NewStatus)),
		Body: fmt.Sprintf(
			"Hello,\n\n%s\n\nAlert #%d changed from %s to %s.\n\nYou receive this email because you follow this alert.",
			line, m.AlertID, m.OldStatus, m.NewStatus,
		),
		Chat: fmt.Sprintf("%s Alert #%d: %s -> %s", line, m.AlertID, m.OldStatus, m.NewStatus),
	}
}
