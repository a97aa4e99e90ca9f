package auth

import "context"

type contextKey int

const tokenKey contextKey = iota

// WithToken returns a context whose requests use token instead of the
// Transport's TokenSource.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the per-request token override, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
