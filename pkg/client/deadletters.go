package client

import (
	"context"
	"net/url"
	"strconv"
)

// DeadLetterService reads failed notifications. Requires an admin token.
type DeadLetterService struct {
	client *Client
}

// DeadLetterListOptions filters failed notifications
type DeadLetterListOptions struct {
	ListOptions
	Channel string // email or chat
	AlertID int64
}

// List retrieves a page of failed notifications
func (s *DeadLetterService) List(ctx context.Context, opts *DeadLetterListOptions) (*Page[DeadLetter], error) {
	query := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.Channel != "" {
			query.Set("channel", opts.Channel)
		}
		if opts.AlertID > 0 {
			query.Set("alert_id", strconv.FormatInt(opts.AlertID, 10))
		}
	}

	path := "/api/v1/dead-letters"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page Page[DeadLetter]
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get retrieves a failed notification by its job event ID
func (s *DeadLetterService) Get(ctx context.Context, eventID string) (*DeadLetter, error) {
	var dl DeadLetter
	if err := s.client.doRequest(ctx, "GET", "/api/v1/dead-letters/"+url.PathEscape(eventID), nil, &dl); err != nil {
		return nil, err
	}
	return &dl, nil
}
