package subscription

import (
	"net/http"

	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
)

// Error codes
const (
	ErrCodeAlertClosed          = "ALERT_CLOSED"
	ErrCodeAlreadySubscribed    = "ALREADY_SUBSCRIBED"
	ErrCodeSubscriptionNotFound = "SUBSCRIPTION_NOT_FOUND"
)

var (
	ErrAlertClosed          = errors.New(ErrCodeAlertClosed, "Cannot subscribe to a closed alert", http.StatusConflict)
	ErrAlreadySubscribed    = errors.New(ErrCodeAlreadySubscribed, "Already subscribed to this alert", http.StatusConflict)
	ErrSubscriptionNotFound = errors.New(ErrCodeSubscriptionNotFound, "No active subscription for this alert", http.StatusNotFound)
)
