// Package ai calls the Gemini generateContent API. The rest of the
// application treats it as an opaque text-in, text-out service.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the Gemini REST API root.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-flash"
)

// ClientConfig contains configuration for creating a new Gemini client.
type ClientConfig struct {
	// APIKey is the Google AI API key, sent on every request.
	APIKey string
	// Endpoint is the API root (defaults to the production endpoint).
	Endpoint string
	// Model is the model name (defaults to DefaultModel).
	Model string
	// HTTPClient is an optional custom HTTP client (useful for testing).
	HTTPClient *http.Client
	// Timeout is the HTTP request timeout (defaults to 60s).
	Timeout time.Duration
}

// Client is a client for the Gemini generateContent API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
}

// Content is one conversation turn.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is one text fragment of a turn.
type Part struct {
	Text string `json:"text"`
}

// NewClient creates a new Gemini client with the provided configuration.
func NewClient(cfg ClientConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	var httpClient *http.Client
	if cfg.HTTPClient != nil {
		// Copy the provided client so wrapping its transport with the key
		// does not mutate the caller's value.
		clientCopy := *cfg.HTTPClient
		base := clientCopy.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		clientCopy.Transport = &apiKeyTransport{
			Key:  cfg.APIKey,
			Base: base,
		}
		httpClient = &clientCopy
	} else {
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &apiKeyTransport{
				Key:  cfg.APIKey,
				Base: http.DefaultTransport,
			},
		}
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		model:      model,
	}
}

// apiKeyTransport adds the x-goog-api-key header to requests.
type apiKeyTransport struct {
	Key  string
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("x-goog-api-key", t.Key)
	if t.Base == nil {
		return http.DefaultTransport.RoundTrip(req)
	}
	return t.Base.RoundTrip(req)
}

// Model returns the model name being used.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Contents []Content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateContent sends the conversation turns to the model and returns the
// text of the first candidate.
func (c *Client) GenerateContent(ctx context.Context, contents []Content) (string, error) {
	payload, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model %s: %w", c.model, err)
	}
	defer resp.Body.Close()

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("model %s: %s (%s)", c.model, decoded.Error.Message, decoded.Error.Status)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("model %s returned status %d", c.model, resp.StatusCode)
	}
	if len(decoded.Candidates) == 0 {
		return "", errors.New("response contains no candidates")
	}

	var text strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

// GenerateText sends a single user prompt outside any chat session.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.GenerateContent(ctx, []Content{{Role: "user", Parts: []Part{{Text: prompt}}}})
}
