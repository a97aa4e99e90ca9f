package request

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	perrors "github.com/jmgilman/go/errors"
)

// Sentinel errors for client construction.
var (
	// ErrInvalidBaseURL is returned when the base URL is empty or not absolute.
	ErrInvalidBaseURL = errors.New("request: base URL must be absolute")

	// ErrNilClient is returned when a helper is called with a nil Client.
	ErrNilClient = errors.New("request: client is nil")

	// ErrBreakerOpen is returned while the client's breaker rejects requests.
	ErrBreakerOpen = errors.New("request: circuit breaker open")
)

// NetworkError reports a request that never produced an HTTP response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: check your network connection: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// ValidationError is a client-side rejection raised before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return "validation: " + e.Field + ": " + e.Message
}

// StatusMessage returns the default description used when an error
// response carries no message of its own.
func StatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad request"
	case http.StatusUnauthorized:
		return "authentication required"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusNotFound:
		return "requested resource not found"
	case http.StatusInternalServerError:
		return "server error"
	default:
		return fmt.Sprintf("request failed (%d)", status)
	}
}

// StatusCode maps an HTTP status to its platform error code.
func StatusCode(status int) perrors.ErrorCode {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return perrors.CodeInvalidInput
	case status == http.StatusUnauthorized:
		return perrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return perrors.CodeForbidden
	case status == http.StatusNotFound:
		return perrors.CodeNotFound
	case status == http.StatusConflict:
		return perrors.CodeConflict
	case status == http.StatusRequestTimeout:
		return perrors.CodeTimeout
	case status == http.StatusTooManyRequests:
		return perrors.CodeRateLimit
	case status >= 500:
		return perrors.CodeUnavailable
	default:
		return perrors.CodeUnknown
	}
}

// classify wraps a transport or status error with a platform error code.
// Caller cancellation is returned untouched so it is never retried.
func classify(ctx context.Context, method, path string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return ctx.Err()
	}

	var classified perrors.PlatformError
	if errors.As(err, &classified) {
		return err
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return perrors.Wrap(httpErr, StatusCode(httpErr.Status), httpErr.Message)
	}

	netErr := &NetworkError{Method: method, Path: path, Err: err}
	var timeout interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &timeout) && timeout.Timeout()) {
		return perrors.Wrap(netErr, perrors.CodeTimeout, "request timed out")
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return perrors.Wrap(netErr, perrors.CodeNetwork, "connection failed")
	}
	return perrors.Wrap(netErr, perrors.CodeNetwork, "no response received")
}

// Code returns the platform error code carried by err.
func Code(err error) perrors.ErrorCode {
	return perrors.GetCode(err)
}

// IsRetryable reports whether err is a transient failure worth retrying.
func IsRetryable(err error) bool {
	return perrors.IsRetryable(err)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return perrors.GetCode(err) == perrors.CodeNotFound
}

// AsHTTPError extracts the HTTPError from err's chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	ok := errors.As(err, &httpErr)
	return httpErr, ok
}
