package request

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	perrors "github.com/jmgilman/go/errors"
)

type testPost struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "dummyjson.com", "://bad"} {
		if _, err := New(raw); !errors.Is(err, ErrInvalidBaseURL) {
			t.Errorf("New(%q) error = %v, want ErrInvalidBaseURL", raw, err)
		}
	}
}

func TestGet_DecodesResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/1" {
			t.Errorf("path = %q, want /posts/1", r.URL.Path)
		}
		if r.URL.Query().Get("select") != "title" {
			t.Errorf("select = %q, want title", r.URL.Query().Get("select"))
		}
		_ = json.NewEncoder(w).Encode(testPost{ID: 1, Title: "hello"})
	}))

	got, err := Get[testPost](context.Background(), c, "/posts/1", map[string][]string{"select": {"title"}})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != 1 || got.Title != "hello" {
		t.Errorf("Get() = %+v", got)
	}
}

func TestPost_SendsJSONBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var in testPost
		_ = json.NewDecoder(r.Body).Decode(&in)
		in.ID = 251
		_ = json.NewEncoder(w).Encode(in)
	}))

	got, err := Post[testPost](context.Background(), c, "/posts/add", testPost{Title: "new"})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if got.ID != 251 || got.Title != "new" {
		t.Errorf("Post() = %+v", got)
	}
}

func TestDo_HTTPErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantCode    perrors.ErrorCode
	}{
		{"server message", http.StatusNotFound, `{"message":"Post with id '999' not found"}`, "Post with id '999' not found", perrors.CodeNotFound},
		{"default 400", http.StatusBadRequest, ``, "bad request", perrors.CodeInvalidInput},
		{"default 401", http.StatusUnauthorized, `{}`, "authentication required", perrors.CodeUnauthorized},
		{"default 403", http.StatusForbidden, `not json`, "access denied", perrors.CodeForbidden},
		{"other status", http.StatusTeapot, ``, "request failed (418)", perrors.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))

			_, err := Get[testPost](context.Background(), c, "/posts/999", nil)
			httpErr, ok := AsHTTPError(err)
			if !ok {
				t.Fatalf("error %v is not an HTTPError", err)
			}
			if httpErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", httpErr.Status, tt.status)
			}
			if httpErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", httpErr.Message, tt.wantMessage)
			}
			if Code(err) != tt.wantCode {
				t.Errorf("Code() = %v, want %v", Code(err), tt.wantCode)
			}
		})
	}
}

func TestDo_RetriesReadsOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(testPost{ID: 7})
	}))

	got, err := Get[testPost](context.Background(), c, "/posts/7", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != 7 {
		t.Errorf("ID = %d, want 7", got.ID)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestDo_NeverRetriesWrites(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := Patch[testPost](context.Background(), c, "/comments/1", map[string]int{"likes": 2})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRetryable(err) {
		t.Errorf("5xx should classify as retryable, got code %v", Code(err))
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestDo_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := Get[testPost](context.Background(), c, "/users/404", nil)
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(base, WithRetry(RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = Get[testPost](context.Background(), c, "/posts", nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error %v is not a NetworkError", err)
	}
	if Code(err) != perrors.CodeNetwork {
		t.Errorf("Code() = %v, want %v", Code(err), perrors.CodeNetwork)
	}
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := New(srv.URL,
		WithTimeout(20*time.Millisecond),
		WithRetry(RetryConfig{MaxAttempts: 1}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = Get[testPost](context.Background(), c, "/posts", nil)
	if Code(err) != perrors.CodeTimeout {
		t.Errorf("Code() = %v, want %v (err=%v)", Code(err), perrors.CodeTimeout, err)
	}
}

func TestDo_CallerCancellation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Get[testPost](ctx, c, "/posts", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if IsRetryable(err) {
		t.Error("cancellation must not be retryable")
	}
}

func TestGetPage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"posts":[{"id":1,"title":"a"},{"id":2,"title":"b"}],"total":30,"skip":10,"limit":2}`)
	}))

	page, err := GetPage[testPost](context.Background(), c, "/posts", nil, "posts")
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if len(page.Items) != 2 || page.Items[1].Title != "b" {
		t.Errorf("Items = %+v", page.Items)
	}
	if page.Total != 30 || page.Skip != 10 || page.Limit != 2 {
		t.Errorf("PageMeta = %+v", page.PageMeta)
	}
}

func TestDecodeEnvelope_MissingItems(t *testing.T) {
	_, err := DecodeEnvelope[testPost]([]byte(`{"total":0}`), "posts")
	if Code(err) != perrors.CodeSchemaFailed {
		t.Errorf("Code() = %v, want %v", Code(err), perrors.CodeSchemaFailed)
	}

	env, err := DecodeEnvelope[testPost]([]byte(`{"posts":null,"total":0,"skip":0,"limit":0}`), "posts")
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}
	if env.Items == nil {
		t.Error("Items should be an empty slice, not nil")
	}
}
