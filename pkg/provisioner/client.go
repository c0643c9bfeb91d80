// Package provisioner is a client for a Mr Provisioner style machine
// inventory service. It covers the slice of the API that automation
// pipelines drive: machine lookup by name, interface address selection,
// the netboot flag, and preseed reconciliation.
//
// Every call is a synchronous request/response round trip; the client
// holds no state beyond the base URL and auth token, and never retries.
package provisioner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 15 * time.Second

// Client talks to a single provisioner instance.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// Option customises a Client at construction time.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (15s timeout).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTracing wraps the client transport so every request to the
// provisioner carries a span.
func WithTracing() Option {
	return func(c *Client) {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.http.Transport = otelhttp.NewTransport(base)
	}
}

// New builds a Client for the provisioner at baseURL. The token is sent
// verbatim in the Authorization header of every request; that is the only
// auth scheme the service supports.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse provisioner url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("provisioner url %q must be http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("provisioner url %q has no host", baseURL)
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("provisioner token is required")
	}

	c := &Client{
		base:  parsed,
		token: token,
		http:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do issues a single round trip. A status outside ok is a *TransportError.
// When dest is non-nil and the response carries a body, the body is decoded
// into dest; an empty body leaves dest untouched.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, ok []int, dest any) error {
	target := *c.base
	target.Path = path
	if query != nil {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target.String(), err)
	}
	defer resp.Body.Close()

	accepted := false
	for _, code := range ok {
		if resp.StatusCode == code {
			accepted = true
			break
		}
	}
	if !accepted {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &TransportError{
			Method:     method,
			URL:        target.String(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, target.String(), err)
	}
	if dest == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, target.String(), err)
	}
	return nil
}
