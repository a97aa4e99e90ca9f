package auth

import (
	"context"
	"sync"
)

// TokenSource supplies the bearer token for outgoing requests.
// An empty token with a nil error means "send the request anonymously".
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to a TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticTokenSource holds a token that can be swapped at runtime,
// e.g. after a login flow.
type StaticTokenSource struct {
	mu    sync.RWMutex
	token string
}

// NewStaticTokenSource creates a StaticTokenSource holding token.
func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

// Token returns the current token.
func (s *StaticTokenSource) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// Set replaces the token. An empty token disables authentication.
func (s *StaticTokenSource) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

var (
	_ TokenSource = (*StaticTokenSource)(nil)
	_ TokenSource = TokenFunc(nil)
)
