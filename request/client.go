package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perrors "github.com/jmgilman/go/errors"

	"github.com/jonwraymond/postsync/observe"
)

// DefaultTimeout bounds a single HTTP exchange.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// Client issues JSON requests against one backend base URL.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: every call honors ctx cancellation.
//   - Errors: failures are classified (see Code, IsRetryable); only GET is retried.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	timeout   time.Duration
	mw        *observe.Middleware
	retry     *Retry
	breaker   *Breaker
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client, e.g. one with an auth transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-exchange timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMiddleware instruments every exchange with the given middleware.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(c *Client) {
		if mw != nil {
			c.mw = mw
		}
	}
}

// WithRetry sets the read retry policy.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) {
		c.retry = NewRetry(cfg)
	}
}

// WithBreaker guards every exchange with a circuit breaker. Without this
// option the client never short-circuits.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) {
		c.breaker = NewBreaker(cfg)
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || !u.IsAbs() {
		return nil, ErrInvalidBaseURL
	}

	c := &Client{
		baseURL: u,
		timeout: DefaultTimeout,
		mw:      observe.NopMiddleware(),
		retry:   NewRetry(DefaultRetryConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.http.Timeout == 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// Breaker returns the client's breaker, or nil when none is configured.
func (c *Client) Breaker() *Breaker {
	return c.breaker
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do sends one request. body, when non-nil, is JSON encoded; a 2xx response
// body is decoded into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c == nil {
		return ErrNilClient
	}

	op := func(ctx context.Context) error {
		meta := observe.OperationMeta{
			Kind:   observe.KindRequest,
			Entity: entityOf(path),
			Name:   method,
			Target: path,
		}
		return c.mw.Run(ctx, meta, func(ctx context.Context) error {
			send := func(ctx context.Context) error {
				return classify(ctx, method, path, c.send(ctx, method, path, query, body, out))
			}
			if c.breaker != nil {
				return c.breaker.Execute(ctx, send)
			}
			return send(ctx)
		})
	}

	if method == http.MethodGet || method == http.MethodHead {
		return c.retry.Execute(ctx, op)
	}
	return op(ctx)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return perrors.Wrap(err, perrors.CodeInvalidInput, "encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return perrors.Wrap(err, perrors.CodeInvalidInput, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(resp),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return perrors.Wrap(err, perrors.CodeSchemaFailed, "decode response")
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	var payload struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return StatusMessage(resp.StatusCode)
}

// entityOf returns the first path segment, used as the telemetry entity.
func entityOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

// Get issues a GET and decodes the response into T.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	if err := c.Do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Post issues a POST with a JSON body and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return write[T](ctx, c, http.MethodPost, path, body)
}

// Put issues a PUT with a JSON body and decodes the response into T.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return write[T](ctx, c, http.MethodPut, path, body)
}

// Patch issues a PATCH with a JSON body and decodes the response into T.
func Patch[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return write[T](ctx, c, http.MethodPatch, path, body)
}

// Delete issues a DELETE and decodes the response into T.
func Delete[T any](ctx context.Context, c *Client, path string) (T, error) {
	return write[T](ctx, c, http.MethodDelete, path, nil)
}

func write[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	if err := c.Do(ctx, method, path, nil, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
