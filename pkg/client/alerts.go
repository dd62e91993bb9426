package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// AlertService handles alert-related API calls
type AlertService struct {
	client *Client
}

// CreateAlertRequest reports a lost pet
type CreateAlertRequest struct {
	PetID       int64  `json:"petId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateAlertRequest edits an OPENED alert
type UpdateAlertRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ChangeStatusRequest moves an alert to SEEN, SAFE or CLOSED
type ChangeStatusRequest struct {
	Status        string    `json:"status"`
	ClosureReason string    `json:"closureReason,omitempty"` // FOUNDED, CANCELLED, DUPLICATED
	Location      *Location `json:"location,omitempty"`
}

// AlertListOptions contains options for listing alerts
type AlertListOptions struct {
	ListOptions
	PetID   int64
	OwnerID int64
	Status  string
}

// List retrieves a page of alerts
func (s *AlertService) List(ctx context.Context, opts *AlertListOptions) (*Page[Alert], error) {
	query := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.PetID > 0 {
			query.Set("pet_id", strconv.FormatInt(opts.PetID, 10))
		}
		if opts.OwnerID > 0 {
			query.Set("owner_id", strconv.FormatInt(opts.OwnerID, 10))
		}
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
	}

	path := "/api/v1/alerts"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page Page[Alert]
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get retrieves an alert by ID
func (s *AlertService) Get(ctx context.Context, id int64) (*Alert, error) {
	var alert Alert
	if err := s.client.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/alerts/%d", id), nil, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// Create reports a lost pet
func (s *AlertService) Create(ctx context.Context, req CreateAlertRequest) (*Alert, error) {
	var alert Alert
	if err := s.client.doRequest(ctx, "POST", "/api/v1/alerts", req, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// Update edits the title or description of an OPENED alert
func (s *AlertService) Update(ctx context.Context, id int64, req UpdateAlertRequest) (*Alert, error) {
	var alert Alert
	if err := s.client.doRequest(ctx, "PATCH", fmt.Sprintf("/api/v1/alerts/%d", id), req, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// ChangeStatus applies a status transition
func (s *AlertService) ChangeStatus(ctx context.Context, id int64, req ChangeStatusRequest) (*Alert, error) {
	var alert Alert
	if err := s.client.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/alerts/%d/status", id), req, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// MarkSeen reports a sighting
func (s *AlertService) MarkSeen(ctx context.Context, id int64, loc *Location) (*Alert, error) {
	return s.ChangeStatus(ctx, id, ChangeStatusRequest{Status: "SEEN", Location: loc})
}

// MarkSafe reports the pet is safe
func (s *AlertService) MarkSafe(ctx context.Context, id int64, loc *Location) (*Alert, error) {
	return s.ChangeStatus(ctx, id, ChangeStatusRequest{Status: "SAFE", Location: loc})
}

// Close closes the alert for reason
func (s *AlertService) Close(ctx context.Context, id int64, reason string) (*Alert, error) {
	return s.ChangeStatus(ctx, id, ChangeStatusRequest{Status: "CLOSED", ClosureReason: reason})
}

// History returns the audit events of an alert, newest first
func (s *AlertService) History(ctx context.Context, id int64) ([]AlertEvent, error) {
	var events []AlertEvent
	if err := s.client.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/alerts/%d/events", id), nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// LatestEvent returns the most recent audit event of an alert
func (s *AlertService) LatestEvent(ctx context.Context, id int64) (*AlertEvent, error) {
	var event AlertEvent
	if err := s.client.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/alerts/%d/events/latest", id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
