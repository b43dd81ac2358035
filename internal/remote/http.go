package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultHTTPTimeout bounds a health endpoint request.
const DefaultHTTPTimeout = 5 * time.Second

// HTTPProber fetches a URL and reports the response status.
type HTTPProber interface {
	Get(ctx context.Context, url string) (int, error)
}

// HTTPClient implements HTTPProber with net/http.
type HTTPClient struct {
	Client *http.Client
}

var _ HTTPProber = (*HTTPClient)(nil)

// NewHTTPClient creates a client whose requests are bounded by timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPClient{Client: &http.Client{Timeout: timeout}}
}

// Get issues a GET and drains at most 64KiB of the body.
func (c *HTTPClient) Get(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}
