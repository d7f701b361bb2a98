package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/ckanindex/pkg/httputil"
	"github.com/matzehuels/ckanindex/pkg/observability"
)

// Client provides shared HTTP functionality for catalog API clients.
// It handles per-request timeouts, retry of transient failures, common
// request headers and HTTP observability hooks.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http     *http.Client
	headers  map[string]string
	attempts int
}

// Options configures a [Client]. The zero value is usable.
type Options struct {
	Timeout  time.Duration     // Per-request timeout (0 = DefaultTimeout)
	Attempts int               // Tries per request for transient failures (<1 = 1)
	Headers  map[string]string // Applied to all requests
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	return &Client{
		http:     NewHTTPClient(opts.Timeout),
		headers:  opts.Headers,
		attempts: max(opts.Attempts, 1),
	}
}

// SetHTTPClient replaces the underlying HTTP client. Intended for tests that
// talk to an httptest server.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// Get performs an HTTP GET request and JSON-decodes the response into v.
// Transient failures are retried according to the configured attempts.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.get(ctx, url, false, v)
}

// GetEnvelope is like [Client.Get] but also decodes 4xx response bodies into
// v. CKAN reports action failures ("Not found", validation errors) as a JSON
// envelope with a 4xx status, and that envelope is what callers want to see.
func (c *Client) GetEnvelope(ctx context.Context, url string, v any) error {
	return c.get(ctx, url, true, v)
}

func (c *Client) get(ctx context.Context, url string, clientErrBody bool, v any) error {
	return httputil.Retry(ctx, c.attempts, httputil.DefaultBackoff, func() error {
		body, err := c.doRequest(ctx, url, clientErrBody)
		if err != nil {
			return err
		}
		defer body.Close()
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

func (c *Client) doRequest(ctx context.Context, rawURL string, clientErrBody bool) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if clientErrBody && resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return resp.Body, nil
	}
	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// checkStatus classifies an HTTP status. 429 and 5xx are retryable.
func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

func hostPath(u *url.URL) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.Host, u.Path
}
