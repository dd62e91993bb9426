package dto

import (
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/alert"
)

// AlertDTO represents an alert in API responses
// Uses camelCase for frontend compatibility
type AlertDTO struct {
	ID          int64     `json:"id"`
	PetID       int64     `json:"petId"`
	OwnerID     int64     `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateAlertRequest represents an alert creation request
type CreateAlertRequest struct {
	PetID       int64  `json:"petId" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// UpdateAlertRequest edits an OPENED alert
type UpdateAlertRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// LocationDTO is a reported position
type LocationDTO struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// ChangeStatusRequest moves an alert through its lifecycle
type ChangeStatusRequest struct {
	Status        string       `json:"status" validate:"required,alert_status"`
	ClosureReason string       `json:"closureReason,omitempty" validate:"omitempty,closure_reason"`
	Location      *LocationDTO `json:"location,omitempty"`
}

// EventDTO is one entry of an alert's history
type EventDTO struct {
	ID             string       `json:"id"`
	AlertID        int64        `json:"alertId"`
	Kind           string       `json:"kind"`
	PreviousStatus string       `json:"previousStatus,omitempty"`
	NewStatus      string       `json:"newStatus,omitempty"`
	OldValue       string       `json:"oldValue,omitempty"`
	NewValue       string       `json:"newValue,omitempty"`
	Location       *LocationDTO `json:"location,omitempty"`
	ClosureReason  string       `json:"closureReason,omitempty"`
	ActorID        int64        `json:"actorId"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// ToAlertDTO converts a domain alert
func ToAlertDTO(a *alert.Alert) AlertDTO {
	return AlertDTO{
		ID:          a.ID,
		PetID:       a.PetID,
		OwnerID:     a.OwnerID,
		Title:       a.Title,
		Description: a.Description,
		Status:      string(a.Status),
		Version:     a.Version,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ToAlertDTOs converts a list of domain alerts
func ToAlertDTOs(alerts []*alert.Alert) []AlertDTO {
	out := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		out[i] = ToAlertDTO(a)
	}
	return out
}

// ToEventDTO converts a domain event
func ToEventDTO(ev *alert.Event) EventDTO {
	out := EventDTO{
		ID:             ev.ID,
		AlertID:        ev.AlertID,
		Kind:           string(ev.Kind),
		PreviousStatus: string(ev.PreviousStatus),
		NewStatus:      string(ev.NewStatus),
		OldValue:       ev.OldValue,
		NewValue:       ev.NewValue,
		ClosureReason:  string(ev.ClosureReason),
		ActorID:        ev.ActorID,
		CreatedAt:      ev.CreatedAt,
	}
	if ev.Location != nil {
		out.Location = &LocationDTO{Latitude: ev.Location.Latitude, Longitude: ev.Location.Longitude}
	}
	return out
}

// ToEventDTOs converts a list of domain events
func ToEventDTOs(events []*alert.Event) []EventDTO {
	out := make([]EventDTO, len(events))
	for i, ev := range events {
		out[i] = ToEventDTO(ev)
	}
	return out
}
