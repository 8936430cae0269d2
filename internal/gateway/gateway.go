package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"signline/internal/config"
)

// AuthHeader is the legacy credential header the provider expects on every
// request outside the token-grant flow.
const AuthHeader = "X-ESign-Authentication"

// Client is a minimal provider REST gateway. It performs a single attempt
// per call; retries, if desired, belong to the caller's HTTP client.
type Client struct {
	BaseURL    string
	Headers    map[string]string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a gateway client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// NewWithAuth creates a client that sends the legacy credential header
// derived from cfg on every request.
func NewWithAuth(baseURL string, cfg *config.Config) *Client {
	c := New(baseURL)
	c.Headers = map[string]string{AuthHeader: CredentialHeader(cfg)}
	return c
}

// CredentialHeader builds the JSON credential blob for the legacy header.
func CredentialHeader(cfg *config.Config) string {
	blob, _ := json.Marshal(map[string]string{
		"Username":      cfg.Username,
		"Password":      cfg.Password,
		"IntegratorKey": cfg.IntegratorKey,
	})
	return string(blob)
}

// WithHeaders returns a copy of the client carrying extra default headers.
// The copy shares the underlying HTTP client but nothing else, so callers
// can derive per-operation contexts without touching the shared session.
func (c *Client) WithHeaders(extra map[string]string) *Client {
	headers := make(map[string]string, len(c.Headers)+len(extra))
	for k, v := range c.Headers {
		headers[k] = v
	}
	for k, v := range extra {
		headers[k] = v
	}
	return &Client{
		BaseURL:    c.BaseURL,
		Headers:    headers,
		HTTPClient: c.HTTPClient,
		Timeout:    c.Timeout,
	}
}

// APIError wraps non-2xx provider responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway error: status=%d body=%s", e.StatusCode, e.Body)
}

// Call issues a single request and returns the raw JSON body alongside the
// response. Non-2xx statuses produce an *APIError; the body is returned to
// the caller untouched for error flattening.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body any, headers map[string]string) (json.RawMessage, *http.Response, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	endpoint := c.base() + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return json.RawMessage(data), resp, nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
