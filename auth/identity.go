package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what a bearer token claims about its holder.
// Claims are read without signature verification; the backend stays the
// authority on whether the token is valid.
type Identity struct {
	// Principal is the sub claim, or the username/id claim when sub is absent.
	Principal string

	// Claims contains the raw claims from the token.
	Claims map[string]any

	// ExpiresAt is zero when the token carries no exp claim.
	ExpiresAt time.Time

	// IssuedAt is zero when the token carries no iat claim.
	IssuedAt time.Time
}

// IsExpired reports whether the identity has expired at now, allowing leeway.
func (id *Identity) IsExpired(now time.Time, leeway time.Duration) bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(id.ExpiresAt.Add(leeway))
}

// LooksLikeJWT reports whether token has the three dot-separated JWT segments.
func LooksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

// Inspect decodes a JWT's claims without verifying its signature.
func Inspect(token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrTokenMalformed
	}

	identity := &Identity{Claims: make(map[string]any, len(claims))}
	for k, v := range claims {
		identity.Claims[k] = v
	}

	for _, claim := range []string{"sub", "username", "id"} {
		switch v := claims[claim].(type) {
		case string:
			if v != "" {
				identity.Principal = v
			}
		case float64:
			identity.Principal = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if identity.Principal != "" {
			break
		}
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		identity.IssuedAt = iat.Time
	}

	return identity, nil
}
