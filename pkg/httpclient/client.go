// Package httpclient provides the shared HTTP transport used by judge and
// RAG providers: pooled connections, HTTP/2, an optional token-bucket
// rate limiter, and a uniform JSON request/response helper. Adapted from
// the REST generator transport and its limiter field
// (internal/generators/rest.Rest).
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/norma-dev/levelapp/pkg/ratelimit"
)

// DefaultTimeout is the judge HTTP call timeout (300s).
const DefaultTimeout = 300 * time.Second

// Client is a thin wrapper over *http.Client carrying an optional bearer
// API key and a connection-pooled, HTTP/2-capable transport.
type Client struct {
	http    *http.Client
	apiKey  string
	limiter *ratelimit.Limiter
}

// New builds a Client with a pooled transport and the given timeout.
// apiKey may be empty; when set it is sent as "Authorization: Bearer <key>".
func New(apiKey string, timeout ...time.Duration) *Client {
	t := DefaultTimeout
	if len(timeout) > 0 {
		t = timeout[0]
	}

	return &Client{
		http:   &http.Client{Timeout: t, Transport: newTransport()},
		apiKey: apiKey,
	}
}

// SetLimiter attaches a token-bucket limiter that PostJSONWithHeaders waits
// on before every request, so one provider's burst can't starve another's
// connection pool. A nil limiter (the default) disables throttling.
func (c *Client) SetLimiter(l *ratelimit.Limiter) {
	c.limiter = l
}

// LimiterFromConfig builds a *ratelimit.Limiter from a provider's llm_config,
// honoring the same rate_limit/burst_limit keys as
// internal/generators/rest's limiter construction. Returns nil when
// rate_limit is absent or non-positive, leaving the client unthrottled.
func LimiterFromConfig(cfg map[string]any) *ratelimit.Limiter {
	rateLimit, ok := cfg["rate_limit"].(float64)
	if !ok || rateLimit <= 0 {
		return nil
	}
	capacity := rateLimit
	if burst, ok := cfg["burst_limit"].(float64); ok && burst >= 1.0 {
		capacity = burst
	}
	return ratelimit.NewLimiter(capacity, rateLimit)
}

// newTransport returns an http.Transport configured for connection pooling
// and HTTP/2, preventing connection exhaustion under concurrent judge calls.
func newTransport() *http.Transport {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
	}
	_ = http2.ConfigureTransport(transport)
	return transport
}

// PostJSON marshals body, POSTs it with Content-Type: application/json, and
// unmarshals the response into out. A non-2xx response yields an error
// carrying the status code and the start of the response body.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	return c.PostJSONWithHeaders(ctx, url, nil, body, out)
}

// PostJSONWithHeaders is PostJSON with caller-supplied extra headers,
// applied after the client's own Authorization header so a provider with a
// non-Bearer auth scheme (e.g. Anthropic's x-api-key) can override it.
func (c *Client) PostJSONWithHeaders(ctx context.Context, url string, headers map[string]string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("httpclient: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("httpclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyHeaders(req)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("httpclient: rate limit wait cancelled: %w", err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("httpclient: unexpected status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("httpclient: decode response: %w", err)
	}
	return nil
}

// APIKey returns the client's configured key, for providers whose auth
// scheme isn't "Authorization: Bearer" (e.g. Anthropic's x-api-key header).
func (c *Client) APIKey() string {
	return c.apiKey
}

func (c *Client) applyHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
