package auth

import (
	"fmt"
	"net/http"
	"time"

	perrors "github.com/jmgilman/go/errors"
)

// Transport is an http.RoundTripper that injects "Authorization: Bearer".
//
// Tokens that parse as JWTs are checked for expiry first; an expired token
// fails the request with ErrTokenExpired instead of reaching the backend.
type Transport struct {
	// Base is the underlying transport. Default: http.DefaultTransport.
	Base http.RoundTripper

	// Source supplies the token. A nil Source sends requests anonymously.
	Source TokenSource

	// Leeway tolerates clock skew when checking exp.
	Leeway time.Duration

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok := TokenFromContext(req.Context())
	if !ok && t.Source != nil {
		var err error
		token, err = t.Source.Token(req.Context())
		if err != nil {
			return nil, perrors.Wrap(fmt.Errorf("%w: %w", ErrMissingToken, err), perrors.CodeUnauthorized, "token source failed")
		}
	}

	if token != "" {
		if err := t.check(token); err != nil {
			return nil, err
		}
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return t.base().RoundTrip(req)
}

func (t *Transport) check(token string) error {
	if !LooksLikeJWT(token) {
		return nil
	}
	identity, err := Inspect(token)
	if err != nil {
		return perrors.Wrap(err, perrors.CodeUnauthorized, "bearer token is not a valid JWT")
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	if identity.IsExpired(now(), t.Leeway) {
		return perrors.Wrap(ErrTokenExpired, perrors.CodeUnauthorized, "bearer token expired")
	}
	return nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// NewHTTPClient returns an http.Client whose requests carry tokens from source.
func NewHTTPClient(source TokenSource) *http.Client {
	return &http.Client{Transport: &Transport{Source: source}}
}

var _ http.RoundTripper = (*Transport)(nil)
