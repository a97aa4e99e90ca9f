package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, jwt.MapClaims{
		"id":       float64(1),
		"username": "emilys",
		"exp":      exp.Unix(),
		"iat":      exp.Add(-2 * time.Hour).Unix(),
	})

	id, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if id.Principal != "emilys" {
		t.Errorf("Principal = %q, want emilys", id.Principal)
	}
	if !id.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", id.ExpiresAt, exp)
	}
	if id.IsExpired(time.Now(), 0) {
		t.Error("token should not be expired")
	}
	if !id.IsExpired(exp.Add(time.Second), 0) {
		t.Error("token should be expired after exp")
	}
}

func TestInspect_NumericPrincipal(t *testing.T) {
	id, err := Inspect(signToken(t, jwt.MapClaims{"id": float64(42)}))
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if id.Principal != "42" {
		t.Errorf("Principal = %q, want 42", id.Principal)
	}
	if !id.ExpiresAt.IsZero() || id.IsExpired(time.Now(), 0) {
		t.Error("token without exp never expires")
	}
}

func TestInspect_Malformed(t *testing.T) {
	if _, err := Inspect("not.a.jwt"); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("Inspect() error = %v, want ErrTokenMalformed", err)
	}
}

func TestLooksLikeJWT(t *testing.T) {
	tests := map[string]bool{
		"a.b.c":        true,
		"opaque-token": false,
		"a.b":          false,
	}
	for in, want := range tests {
		if got := LooksLikeJWT(in); got != want {
			t.Errorf("LooksLikeJWT(%q) = %v, want %v", in, got, want)
		}
	}
}
