package users

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jonwraymond/postsync/request"
)

// AuthorLister lists the lightweight author records.
type AuthorLister interface {
	ListAuthors(ctx context.Context) (List, error)
}

// ProfileGetter fetches one full profile.
type ProfileGetter interface {
	GetProfile(ctx context.Context, id int) (Profile, error)
}

// API is the users endpoint group.
type API struct {
	c *request.Client
}

// NewAPI creates an API over c.
func NewAPI(c *request.Client) (*API, error) {
	if c == nil {
		return nil, request.ErrNilClient
	}
	return &API{c: c}, nil
}

// ListAuthors fetches every user with only username and image selected.
func (a *API) ListAuthors(ctx context.Context) (List, error) {
	q := url.Values{}
	q.Set("limit", "0")
	q.Set("select", "username,image")

	env, err := request.GetPage[Author](ctx, a.c, "/users", q, "users")
	if err != nil {
		return List{}, err
	}
	return List{Users: env.Items, PageMeta: env.PageMeta}, nil
}

// GetProfile fetches the full profile for id.
func (a *API) GetProfile(ctx context.Context, id int) (Profile, error) {
	return request.Get[Profile](ctx, a.c, "/users/"+strconv.Itoa(id), nil)
}

var (
	_ AuthorLister  = (*API)(nil)
	_ ProfileGetter = (*API)(nil)
)
