package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	statusdomain "restroom-cloud/internal/status/domain"
)

// Client is a minimal REST client for the upstream restroom status endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// NewClient constructs a feed client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("feed: empty base url")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Latest fetches the most recent status snapshot. A non-2xx response or a
// payload with ok=false is reported as an error; the caller treats it as a
// skipped poll.
func (c *Client) Latest(ctx context.Context) (statusdomain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/restroom/status/latest", nil)
	if err != nil {
		return statusdomain.Snapshot{}, err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.client.Do(req)
	if err != nil {
		return statusdomain.Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusdomain.Snapshot{}, fmt.Errorf("feed: http %d", resp.StatusCode)
	}

	var snapshot statusdomain.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return statusdomain.Snapshot{}, fmt.Errorf("feed: decode: %w", err)
	}
	if err := snapshot.Validate(); err != nil {
		return statusdomain.Snapshot{}, err
	}
	return snapshot, nil
}
