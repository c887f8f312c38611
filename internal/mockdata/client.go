package mockdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

var ErrUnknownFeed = errors.New("unknown feed")

const maxBodyBytes = 4 << 20

// Client fetches the named static JSON feeds behind the dashboard widgets.
type Client struct {
	http      *http.Client
	endpoints map[string]string
}

func NewClient(endpoints map[string]string, timeout time.Duration) *Client {
	copied := make(map[string]string, len(endpoints))
	for k, v := range endpoints {
		copied[k] = v
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		endpoints: copied,
	}
}

// Names lists the configured feeds in sorted order.
func (c *Client) Names() []string {
	names := make([]string, 0, len(c.endpoints))
	for name := range c.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fetch performs a plain GET and returns the raw body.
func (c *Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	url, ok := c.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeed, name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return body, nil
}
