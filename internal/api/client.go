// Package api is the HTTP client of the DPE backoffice simulation endpoints.
package api

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

	"golang.org/x/oauth2"

	"github.com/rgehrsitz/dpesim/internal/logging"
)

var (
	// ErrUnauthenticated is returned when a call needs a session and there is
	// none, or the backend rejected the token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrMalformed is returned when a response does not have the expected
	// shape.
	ErrMalformed = errors.New("malformed response")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Code, e.Body)
}

// Unwrap lets errors.Is(err, ErrUnauthenticated) match 401 and 403.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return ErrUnauthenticated
	}
	return nil
}

type authMode int

const (
	authRequired authMode = iota
	authOptional
	authNone
)

// Client calls the backoffice API. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens oauth2.TokenSource
	logger logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(l)
	}
}

// New returns a client for baseURL. tokens supplies the bearer token; it may
// be nil for the unauthenticated project endpoints.
func New(baseURL string, tokens oauth2.TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: 30 * time.Second},
		tokens: tokens,
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type request struct {
	method   string
	endpoint string
	query    url.Values
	body     any
	auth     authMode
}

func (c *Client) bearer(mode authMode) (string, error) {
	if mode == authNone {
		return "", nil
	}
	if c.tokens == nil {
		if mode == authRequired {
			return "", ErrUnauthenticated
		}
		return "", nil
	}
	tok, err := c.tokens.Token()
	if err != nil || !tok.Valid() {
		if mode == authRequired {
			if err == nil {
				err = errors.New("token expired")
			}
			return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return "", nil
	}
	return tok.AccessToken, nil
}

// send performs r and returns the raw body of a 2xx response.
func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	token, err := c.bearer(r.auth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.endpoint, err)
	}

	u := c.base.ResolveReference(&url.URL{Path: r.endpoint})
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", r.endpoint, err)
		}
		c.logger.Debugf("%s %s body=%s", r.method, r.endpoint, data)
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", r.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", r.endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", r.endpoint, err)
	}
	c.logger.Debugf("%s %s -> %d in %s", r.method, r.endpoint, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Endpoint: r.endpoint,
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(truncate(string(data), 512)),
		}
	}
	return data, nil
}

// do performs r and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	data, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w: %v", r.endpoint, ErrMalformed, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
