// Package client provides the request executor: it sends JSON API requests
// over the egress pool, classifies outcomes and fails over across egress
// paths on transport errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/rbx-client/pkg/egress"
	"github.com/Sternrassler/rbx-client/pkg/logging"
	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for client operations.
var (
	rbxRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbx_requests_total",
		Help: "Total API requests by host and status",
	}, []string{"host", "status"})

	rbxRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rbx_request_duration_seconds",
		Help:    "API request duration in seconds by host, including failover",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 15, 45},
	}, []string{"host"})

	rbxErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbx_errors_total",
		Help: "Total classified errors returned to callers by class",
	}, []string{"class"})
)

// Request describes one API call.
type Request struct {
	// Method is the HTTP method (default GET)
	Method string

	// URL is the absolute endpoint URL
	URL string

	// Query parameters appended to URL
	Query url.Values

	// Body is JSON-encoded when non-nil
	Body any
}

// Client executes API requests over an egress pool.
type Client struct {
	pool     *egress.Pool
	sessions []*resty.Client // aligned with pool descriptors
	direct   *resty.Client
	config   Config
	logger   zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Per-call timeout for a single attempt
	Timeout time.Duration

	// Upper bound on attempts per request; the effective bound is
	// min(pool size, MaxAttempts), or 1 without egress paths
	MaxAttempts int

	// Connection settings for every egress transport
	Transport egress.TransportConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		UserAgent:   "rbx-client/0.1.0",
		Timeout:     15 * time.Second,
		MaxAttempts: 3,
		Transport:   egress.DefaultTransportConfig(),
	}
}

// New creates a client that routes requests through pool.
// One HTTP session is built per egress descriptor and reused for the
// lifetime of the client.
func New(pool *egress.Pool, cfg Config) (*Client, error) {
	if pool == nil {
		return nil, fmt.Errorf("egress pool is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("max_attempts must be >= 1 (got %d)", cfg.MaxAttempts)
	}

	c := &Client{
		pool:   pool,
		config: cfg,
		logger: logging.NewLogger(logging.ComponentClient),
	}

	direct, err := c.newSession(egress.Selection{Index: -1, Direct: true})
	if err != nil {
		return nil, err
	}
	c.direct = direct

	for i, d := range pool.Descriptors() {
		session, err := c.newSession(egress.Selection{Index: i, Descriptor: d})
		if err != nil {
			return nil, fmt.Errorf("egress %d: %w", i+1, err)
		}
		c.sessions = append(c.sessions, session)
	}

	return c, nil
}

// newSession builds a resty client bound to one egress path.
func (c *Client) newSession(sel egress.Selection) (*resty.Client, error) {
	transport, err := egress.NewTransport(sel, c.config.Transport)
	if err != nil {
		return nil, err
	}

	return resty.New().
		SetHeader("User-Agent", c.config.UserAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(c.config.Timeout).
		SetRetryCount(0).
		SetTransport(transport), nil
}

// sessionFor returns the session bound to a selection.
func (c *Client) sessionFor(sel egress.Selection) *resty.Client {
	if sel.Direct || sel.Index < 0 || sel.Index >= len(c.sessions) {
		return c.direct
	}
	return c.sessions[sel.Index]
}

// Pool returns the egress pool the client routes through.
func (c *Client) Pool() *egress.Pool {
	return c.pool
}

// Do performs a JSON API request with egress failover and returns the raw
// JSON body of a 2xx response.
//
// Outcomes:
//   - 404 -> ErrorClassNotFound, 429 -> ErrorClassRateLimited,
//     other non-2xx -> ErrorClassHTTPStatus; never retried
//   - invalid JSON body -> ErrorClassUnclassified; never retried
//   - transport failure -> retried on the next egress path while attempts
//     remain, then ErrorClassTimeout, ErrorClassProxyUnavailable or
//     ErrorClassNetwork
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	method, target, body, err := prepare(req)
	if err != nil {
		return nil, err
	}

	host := target.Host
	startTime := time.Now()
	defer func() {
		rbxRequestDuration.WithLabelValues(host).Observe(time.Since(startTime).Seconds())
	}()

	endpoint := target.Path
	call := func(ctx context.Context, session *resty.Client) attemptResult {
		r := session.R().SetContext(ctx)
		if len(req.Query) > 0 {
			r.SetQueryParamsFromValues(req.Query)
		}
		if body != nil {
			r.SetHeader("Content-Type", "application/json").SetBody(body)
		}

		resp, err := r.Execute(method, target.String())
		if err != nil {
			class := classifyTransport(err, session == c.direct)
			rbxRequestsTotal.WithLabelValues(host, "transport_error").Inc()
			return attemptResult{err: err, class: class}
		}

		rbxRequestsTotal.WithLabelValues(host, strconv.Itoa(resp.StatusCode())).Inc()
		return c.classifyResponse(endpoint, resp.StatusCode(), resp.Body())
	}

	res, err := c.runAttempts(ctx, planFor(c.pool, c.config.MaxAttempts), endpoint, call)
	if err != nil {
		rbxErrorsTotal.WithLabelValues(string(ClassOf(err))).Inc()
		return nil, err
	}

	return json.RawMessage(res.body), nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, URL: rawURL, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, rawURL string, body any) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, URL: rawURL, Body: body})
}

// GetRaw performs a GET request with egress failover but without status or
// body classification: any HTTP response counts as success. Used for binary
// downloads where the caller inspects the status itself.
func (c *Client) GetRaw(ctx context.Context, rawURL string, query url.Values) ([]byte, int, error) {
	_, target, _, err := prepare(Request{Method: http.MethodGet, URL: rawURL})
	if err != nil {
		return nil, 0, err
	}

	host := target.Host
	call := func(ctx context.Context, session *resty.Client) attemptResult {
		r := session.R().SetContext(ctx).SetHeader("Accept", "*/*")
		if len(query) > 0 {
			r.SetQueryParamsFromValues(query)
		}

		resp, err := r.Get(target.String())
		if err != nil {
			rbxRequestsTotal.WithLabelValues(host, "transport_error").Inc()
			return attemptResult{err: err, class: classifyTransport(err, session == c.direct)}
		}

		rbxRequestsTotal.WithLabelValues(host, strconv.Itoa(resp.StatusCode())).Inc()
		return attemptResult{body: resp.Body(), status: resp.StatusCode()}
	}

	res, err := c.runAttempts(ctx, planFor(c.pool, c.config.MaxAttempts), target.Path, call)
	if err != nil {
		rbxErrorsTotal.WithLabelValues(string(ClassOf(err))).Inc()
		return nil, 0, err
	}

	return res.body, res.status, nil
}

// classifyResponse maps an HTTP response to success or an application error.
func (c *Client) classifyResponse(endpoint string, status int, body []byte) attemptResult {
	var class ErrorClass
	var msg string

	switch {
	case status == http.StatusNotFound:
		class, msg = ErrorClassNotFound, "resource not found"
	case status == http.StatusTooManyRequests:
		class, msg = ErrorClassRateLimited, "too many requests"
	case status < 200 || status > 299:
		class, msg = ErrorClassHTTPStatus, http.StatusText(status)
	case !json.Valid(body):
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", status).
			Int("body_bytes", len(body)).
			Msg("Malformed response body")
		return attemptResult{
			status: status,
			class:  ErrorClassUnclassified,
			err: &Error{
				Class:    ErrorClassUnclassified,
				Message:  "malformed response body",
				Attempts: 1,
				Err:      fmt.Errorf("invalid JSON (%d bytes): %q", len(body), truncate(body, 120)),
			},
		}
	default:
		return attemptResult{body: body, status: status}
	}

	c.logger.Warn().
		Str("endpoint", endpoint).
		Int("status", status).
		Str("error_class", string(class)).
		Msg("API request error")

	return attemptResult{
		status: status,
		class:  class,
		err: &Error{
			Class:      class,
			StatusCode: status,
			Message:    msg,
			Attempts:   1,
		},
	}
}

// prepare validates a request and encodes its body.
func prepare(req Request) (string, *url.URL, []byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := url.Parse(req.URL)
	if err != nil {
		return "", nil, nil, fmt.Errorf("%w: parse url: %v", ErrInvalidRequest, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return "", nil, nil, fmt.Errorf("%w: unsupported url scheme %q", ErrInvalidRequest, target.Scheme)
	}

	var body []byte
	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return "", nil, nil, fmt.Errorf("%w: encode body: %v", ErrInvalidRequest, err)
		}
	}

	return method, target, body, nil
}

// truncate shortens b for error messages.
func truncate(b []byte, n int) []byte {
	b = bytes.TrimSpace(b)
	if len(b) <= n {
		return b
	}
	return b[:n]
}

// Decode unmarshals a JSON payload into T. Decoding failures are classified
// as ErrorClassUnclassified and keep the raw cause.
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &Error{
			Class:   ErrorClassUnclassified,
			Message: "unexpected response shape",
			Err:     err,
		}
	}
	return v, nil
}

// GetJSON performs a GET request and decodes the payload into T.
func GetJSON[T any](ctx context.Context, c *Client, rawURL string, query url.Values) (T, error) {
	raw, err := c.Get(ctx, rawURL, query)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](raw)
}

// PostJSON performs a POST request and decodes the payload into T.
func PostJSON[T any](ctx context.Context, c *Client, rawURL string, body any) (T, error) {
	raw, err := c.Post(ctx, rawURL, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](raw)
}
