package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jonwraymond/postsync/querycache"
	"github.com/jonwraymond/postsync/request"
)

func newTestAPI(t *testing.T, h http.Handler) *API {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := request.New(srv.URL)
	if err != nil {
		t.Fatalf("request.New() error = %v", err)
	}
	api, err := NewAPI(c)
	if err != nil {
		t.Fatalf("NewAPI() error = %v", err)
	}
	return api
}

func TestNewAPI_NilClient(t *testing.T) {
	if _, err := NewAPI(nil); !errors.Is(err, request.ErrNilClient) {
		t.Fatalf("NewAPI(nil) error = %v, want ErrNilClient", err)
	}
}

func TestAPI_ListAuthors(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "0" || q.Get("select") != "username,image" {
			t.Errorf("query = %v", q)
		}
		_, _ = w.Write([]byte(`{"users":[{"id":1,"username":"emilys","image":"e.png"},{"id":2,"username":"michaelw","image":"m.png"}],"total":2,"skip":0,"limit":2}`))
	}))

	got, err := api.ListAuthors(context.Background())
	if err != nil {
		t.Fatalf("ListAuthors() error = %v", err)
	}
	if got.Total != 2 || len(got.Users) != 2 {
		t.Fatalf("ListAuthors() = %+v", got)
	}
	if idx := got.Index(); idx[2].Username != "michaelw" {
		t.Errorf("Index()[2] = %+v", idx[2])
	}
}

func TestAPI_GetProfile(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/5" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 5, "username": "ava", "firstName": "Ava", "lastName": "Taylor", "age": 27,
			"address": map[string]string{"city": "Phoenix"},
			"company": map[string]string{"name": "Acme", "title": "Engineer"},
		})
	}))

	got, err := api.GetProfile(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.FullName() != "Ava Taylor" || got.Address.City != "Phoenix" || got.Company.Title != "Engineer" {
		t.Errorf("GetProfile() = %+v", got)
	}
	if got.Author() != (Author{ID: 5, Username: "ava"}) {
		t.Errorf("Author() = %+v", got.Author())
	}
}

func TestAPI_GetProfileNotFound(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"User with id '999' not found"}`))
	}))

	_, err := api.GetProfile(context.Background(), 999)
	if !request.IsNotFound(err) {
		t.Fatalf("GetProfile() error = %v, want not found", err)
	}
}

type countingProfiles struct {
	calls atomic.Int32
}

func (c *countingProfiles) GetProfile(_ context.Context, id int) (Profile, error) {
	c.calls.Add(1)
	return Profile{ID: id, Username: "u"}, nil
}

func TestDetailQuery_CachedWithinWindow(t *testing.T) {
	cache := querycache.New()
	defer cache.Close()

	api := &countingProfiles{}
	ctx := context.Background()
	for range 3 {
		p, err := querycache.Query(ctx, cache, DetailQuery(api, 7))
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if p.ID != 7 {
			t.Fatalf("Profile.ID = %d, want 7", p.ID)
		}
	}
	if n := api.calls.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1", n)
	}
	if _, _, err := querycache.Peek[Profile](cache, DetailKey(8)); !errors.Is(err, querycache.ErrCacheMiss) {
		t.Errorf("Peek(other id) error = %v, want ErrCacheMiss", err)
	}
}

func TestKeys(t *testing.T) {
	if got := ListKey().String(); got != "users/list" {
		t.Errorf("ListKey() = %q", got)
	}
	if got := DetailKey(3).String(); got != "users/detail/3" {
		t.Errorf("DetailKey(3) = %q", got)
	}
	if DetailKey(3).HasPrefix(ListKey()) {
		t.Error("detail key must not fall under the list scope")
	}
}

func TestNewStore_ProfileModal(t *testing.T) {
	s := NewStore()
	if err := s.Open(ModalProfile); err != nil {
		t.Fatalf("Open(profile) error = %v", err)
	}
	if err := s.Open("edit"); err == nil {
		t.Error("Open(edit) should fail on the users store")
	}
}
