package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBackend(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			_, _ = w.Write([]byte(`{"posts":[{"id":1,"title":"His mother had always taught him","userId":1,"tags":["history"],"reactions":{"likes":5}}],"total":1,"skip":0,"limit":10}`))
		case "/users":
			_, _ = w.Write([]byte(`{"users":[{"id":1,"username":"emilys"}],"total":1,"skip":0,"limit":0}`))
		case "/posts/tags":
			_, _ = w.Write([]byte(`[{"slug":"history","name":"History"}]`))
		case "/comments/post/1":
			_, _ = w.Write([]byte(`{"comments":[{"id":10,"body":"hi","postId":1,"likes":2}],"total":1,"skip":0,"limit":30}`))
		case "/comments/10":
			_, _ = w.Write([]byte(`{"id":10,"postId":1,"likes":3}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv("POSTSYNC_BASE_URL", srv.URL)
	t.Setenv("POSTSYNC_RETRY_ATTEMPTS", "1")
	t.Setenv("POSTSYNC_LOG_LEVEL", "error")
	return srv.URL
}

func TestRun(t *testing.T) {
	newBackend(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"posts with search", []string{"posts", "search=MOTHER"}, 0, "His [mother] had"},
		{"tags", []string{"tags"}, 0, "history\tHistory"},
		{"comments", []string{"comments", "1"}, 0, "hi"},
		{"like", []string{"like", "1", "10"}, 0, "comment 10 now has 3 likes"},
		{"health", []string{"health"}, 0, `"status": "healthy"`},
		{"unknown command", []string{"frobnicate"}, 2, ""},
		{"bad id", []string{"user", "abc"}, 2, ""},
		{"missing user", []string{"user", "9"}, 1, ""},
		{"no command", nil, 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			if code != tt.wantCode {
				t.Fatalf("run() = %d, want %d; stderr: %s", code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantOut) {
				t.Errorf("stdout = %q, want substring %q", stdout.String(), tt.wantOut)
			}
		})
	}
}

func TestHighlight(t *testing.T) {
	if got := highlight("Love and love", "LOVE"); got != "[Love] and [love]" {
		t.Errorf("highlight() = %q", got)
	}
}
