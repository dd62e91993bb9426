package client

import "context"

// Health checks the liveness of the API
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doRequest(ctx, "GET", "/healthz", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Ready reports whether the API can reach its database and queue
func (c *Client) Ready(ctx context.Context) error {
	return c.doRequest(ctx, "GET", "/readyz", nil, nil)
}
