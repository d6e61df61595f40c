// Package transport issues GET requests against a JSON API base URL and maps
// failed responses to *Error.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tamcore/exploitscout/internal/metrics"
)

const (
	defaultUserAgent = "exploitscout/1.0"

	// upper bound on how much of an error body ends up in Error.Message
	maxErrorBody = 4 << 10
)

// Client fetches JSON documents relative to BaseURL
type Client struct {
	// Source labels this client's requests in metrics (e.g. "nvd")
	Source     string
	BaseURL    string
	UserAgent  string
	Accept     string
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
}

// NewClient creates a client for one upstream API
func NewClient(source, baseURL string, timeout time.Duration) *Client {
	return &Client{
		Source:    source,
		BaseURL:   baseURL,
		UserAgent: defaultUserAgent,
		Accept:    "application/json",
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL resolves path against the base URL
func (c *Client) URL(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Fetch GETs path and decodes the JSON body into v. Non-2xx responses
// yield an *Error.
func (c *Client) Fetch(ctx context.Context, path string, v any) error {
	url := c.URL(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", c.Accept)
	req.Header.Set("User-Agent", c.UserAgent)

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.Metrics.ObserveRequest(c.Source, 0, time.Since(start))
		return &Error{URL: url, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	c.Metrics.ObserveRequest(c.Source, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
			URL:        url,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}

	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

// errorMessage prefers a JSON "message" field, then the NVD "message" header,
// then the raw body, then the status text.
func errorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return payload.Message
	}

	if msg := resp.Header.Get("message"); msg != "" {
		return msg
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	return http.StatusText(resp.StatusCode)
}
