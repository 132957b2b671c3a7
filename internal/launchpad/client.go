// Package launchpad fetches bug data from the Launchpad web service API:
// project validation, paginated bug task searches, and single bug records.
package launchpad

import (
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the production API root for project resources.
	DefaultBaseURL = "https://api.launchpad.net/1.0"
	// DefaultBugsBaseURL is the production API root for bug resources.
	DefaultBugsBaseURL = "https://api.launchpad.net/1.0/bugs"
)

// Fetcher retrieves the raw text body at url. One call is one round trip;
// there are no retries and no partial results.
type Fetcher interface {
	Fetch(url string) (string, error)
}

// ClientConfig contains configuration for creating a new Launchpad client.
type ClientConfig struct {
	// HTTPClient is an optional custom HTTP client (useful for testing).
	HTTPClient *http.Client
	// Timeout is the HTTP request timeout (defaults to 30s).
	Timeout time.Duration
	// UserAgent overrides the User-Agent header.
	UserAgent string
}

// Client is the live HTTP implementation of Fetcher.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a new Launchpad client with the provided configuration.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "launchpad-tui"
	}

	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Fetch performs a GET request and returns the body as text. The body is
// returned for any HTTP status: the service answers unknown resource names
// with non-JSON error bodies, and classifying those is the caller's job,
// not the transport's.
func (c *Client) Fetch(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	return string(body), nil
}
