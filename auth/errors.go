package auth

import "errors"

// Sentinel errors for client credentials.
var (
	ErrMissingToken   = errors.New("auth: missing token")
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrTokenMalformed = errors.New("auth: token malformed")
)
