package client

import (
	"context"
	"fmt"
)

// SubscriptionService handles alert subscriptions
type SubscriptionService struct {
	client *Client
}

// Subscribe follows an alert
func (s *SubscriptionService) Subscribe(ctx context.Context, alertID int64) (*Subscription, error) {
	var sub Subscription
	if err := s.client.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/alerts/%d/subscription", alertID), nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Unsubscribe stops following an alert
func (s *SubscriptionService) Unsubscribe(ctx context.Context, alertID int64) error {
	return s.client.doRequest(ctx, "DELETE", fmt.Sprintf("/api/v1/alerts/%d/subscription", alertID), nil, nil)
}

// List returns the caller's subscriptions
func (s *SubscriptionService) List(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	if err := s.client.doRequest(ctx, "GET", "/api/v1/subscriptions", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Subscribers lists the users following an alert (owner or admin)
func (s *SubscriptionService) Subscribers(ctx context.Context, alertID int64) (*Subscribers, error) {
	var out Subscribers
	if err := s.client.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/alerts/%d/subscribers", alertID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
