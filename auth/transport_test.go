package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	perrors "github.com/jmgilman/go/errors"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return token
}

func echoAuthServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("X-Seen-Authorization", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTransport_InjectsBearer(t *testing.T) {
	srv := echoAuthServer(t, nil)
	client := NewHTTPClient(NewStaticTokenSource("opaque-token"))

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if got := resp.Header.Get("X-Seen-Authorization"); got != "Bearer opaque-token" {
		t.Errorf("Authorization = %q, want Bearer opaque-token", got)
	}
}

func TestTransport_EmptyTokenIsAnonymous(t *testing.T) {
	srv := echoAuthServer(t, nil)
	client := NewHTTPClient(NewStaticTokenSource(""))

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if got := resp.Header.Get("X-Seen-Authorization"); got != "" {
		t.Errorf("Authorization = %q, want empty", got)
	}
}

func TestTransport_ContextOverride(t *testing.T) {
	srv := echoAuthServer(t, nil)
	client := NewHTTPClient(NewStaticTokenSource("default"))

	req, _ := http.NewRequestWithContext(WithToken(context.Background(), "override"), http.MethodGet, srv.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if got := resp.Header.Get("X-Seen-Authorization"); got != "Bearer override" {
		t.Errorf("Authorization = %q, want Bearer override", got)
	}
}

func TestTransport_RefusesExpiredJWT(t *testing.T) {
	var hits atomic.Int32
	srv := echoAuthServer(t, &hits)

	expired := signToken(t, jwt.MapClaims{
		"sub": "emilys",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	client := NewHTTPClient(NewStaticTokenSource(expired))

	_, err := client.Get(srv.URL)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Get() error = %v, want ErrTokenExpired", err)
	}
	if perrors.GetCode(err) != perrors.CodeUnauthorized {
		t.Errorf("code = %v, want %v", perrors.GetCode(err), perrors.CodeUnauthorized)
	}
	if hits.Load() != 0 {
		t.Errorf("backend hit %d times, want 0", hits.Load())
	}
}

func TestTransport_LeewayAllowsSkew(t *testing.T) {
	srv := echoAuthServer(t, nil)
	now := time.Now()
	token := signToken(t, jwt.MapClaims{"exp": now.Add(-10 * time.Second).Unix()})

	client := &http.Client{Transport: &Transport{
		Source: NewStaticTokenSource(token),
		Leeway: time.Minute,
		Now:    func() time.Time { return now },
	}}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	_ = resp.Body.Close()
}

func TestTransport_SourceError(t *testing.T) {
	srv := echoAuthServer(t, nil)
	boom := errors.New("keychain locked")
	client := NewHTTPClient(TokenFunc(func(context.Context) (string, error) { return "", boom }))

	_, err := client.Get(srv.URL)
	if !errors.Is(err, ErrMissingToken) || !errors.Is(err, boom) {
		t.Errorf("Get() error = %v, want ErrMissingToken wrapping source error", err)
	}
}

func TestStaticTokenSource_Set(t *testing.T) {
	src := NewStaticTokenSource("a")
	src.Set("b")
	got, err := src.Token(context.Background())
	if err != nil || got != "b" {
		t.Errorf("Token() = %q, %v; want b, nil", got, err)
	}
}
