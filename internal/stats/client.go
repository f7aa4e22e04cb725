// Package stats is the HTTP client for the telemetry endpoint.
package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
)

// Endpoint paths, relative to the base URL.
const (
	StatsPath   = "api/stats"
	HistoryPath = "api/history"
)

// RequestIDHeader carries a per-request UUID for server-side log correlation.
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout bounds each request when the caller's context has no deadline.
const DefaultTimeout = 4 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 4 << 20

// Observer is notified after every request with the endpoint path, the
// elapsed time, and the resulting error (nil on success).
type Observer func(endpoint string, elapsed time.Duration, err error)

// Client fetches snapshots and history from a telemetry endpoint.
type Client struct {
	base     *url.URL
	http     *http.Client
	timeout  time.Duration
	log      logger.Logger
	observer Observer
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

// WithTimeout sets the per-request timeout. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = logger.OrDefault(l)
	}
}

// WithDialContext routes connections through dial, e.g. an SSH tunnel.
func WithDialContext(dial func(ctx context.Context, network, addr string) (net.Conn, error)) Option {
	return func(c *Client) {
		if dial == nil {
			return
		}
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.DialContext = dial
		tr.Proxy = nil
		c.http = &http.Client{Transport: tr}
	}
}

// WithObserver registers a callback run after every request.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a client for the service at base (e.g.
// "http://localhost:5000"). A base with a path prefix is honoured.
func NewClient(base string, opts ...Option) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if err == nil {
			err = fmt.Errorf("missing scheme or host")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Endpoint '%s' isn't a valid URL", base),
			"Use a full URL like http://localhost:5000")
	}

	c := &Client{
		base:    u,
		http:    &http.Client{},
		timeout: DefaultTimeout,
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Snapshot fetches the current metrics.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := c.getJSON(ctx, StatsPath, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// History fetches up to limit samples, oldest first.
func (c *Client) History(ctx context.Context, limit int) ([]HistorySample, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var samples []HistorySample
	if err := c.getJSON(ctx, HistoryPath, q, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) (err error) {
	u := c.base.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer("/"+path, time.Since(start), err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Couldn't build request for %s", u),
			"Check the endpoint in your config")
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("GET %s (request %s)", u, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Can't reach %s", c.base.Host),
			"Is the stats service running? Check the endpoint in your config")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return errors.New(errors.ErrStatus,
			fmt.Sprintf("%s returned %s", u.Path, resp.Status),
			"Check the stats service logs for request "+reqID)
	}

	if err := decodeBody(io.LimitReader(resp.Body, maxBody), out); err != nil {
		return errors.WrapWithCode(err, errors.ErrDecode,
			fmt.Sprintf("Couldn't decode response from %s", u.Path),
			"The endpoint should return JSON")
	}
	return nil
}

// decodeBody decodes exactly one non-null JSON value from r into out.
func decodeBody(r io.Reader, out interface{}) error {
	dec := json.NewDecoder(r)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON value")
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("response body is null")
	}
	return json.Unmarshal(raw, out)
}
