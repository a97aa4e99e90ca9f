package posts

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jonwraymond/postsync/request"
	"github.com/jonwraymond/postsync/users"
)

// ListParams are the query parameters of the post list call. Zero values
// are left off the request.
type ListParams struct {
	Limit  int
	Skip   int
	Query  string
	Tag    string
	SortBy string
	Order  string
}

// Values encodes p. Limit is always sent; limit=0 asks for every post.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(p.Limit))
	if p.Skip > 0 {
		v.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Tag != "" {
		v.Set("tag", p.Tag)
	}
	if p.SortBy != "" {
		v.Set("sortBy", p.SortBy)
		if p.Order != "" {
			v.Set("order", p.Order)
		}
	}
	return v
}

// Source is what the post list descriptor reads from.
type Source interface {
	ListPosts(ctx context.Context, p ListParams) (request.Envelope[Post], error)
	users.AuthorLister
}

// Writer performs the post writes.
type Writer interface {
	CreatePost(ctx context.Context, d Draft) (Post, error)
	UpdatePost(ctx context.Context, id int, d Draft) (Post, error)
	DeletePost(ctx context.Context, id int) (Post, error)
}

// API is the posts endpoint group. It lists authors through the users API.
type API struct {
	c       *request.Client
	authors users.AuthorLister
}

// NewAPI creates an API over c.
func NewAPI(c *request.Client) (*API, error) {
	ua, err := users.NewAPI(c)
	if err != nil {
		return nil, err
	}
	return &API{c: c, authors: ua}, nil
}

// ListPosts fetches one page of posts.
func (a *API) ListPosts(ctx context.Context, p ListParams) (request.Envelope[Post], error) {
	return request.GetPage[Post](ctx, a.c, "/posts", p.Values(), "posts")
}

// ListAuthors implements users.AuthorLister.
func (a *API) ListAuthors(ctx context.Context) (users.List, error) {
	return a.authors.ListAuthors(ctx)
}

// CreatePost adds a post.
func (a *API) CreatePost(ctx context.Context, d Draft) (Post, error) {
	return request.Post[Post](ctx, a.c, "/posts/add", d)
}

// UpdatePost replaces the title, body and author of post id.
func (a *API) UpdatePost(ctx context.Context, id int, d Draft) (Post, error) {
	return request.Put[Post](ctx, a.c, postPath(id), d)
}

// DeletePost deletes post id and returns the deleted record.
func (a *API) DeletePost(ctx context.Context, id int) (Post, error) {
	return request.Delete[Post](ctx, a.c, postPath(id))
}

func postPath(id int) string {
	return "/posts/" + strconv.Itoa(id)
}

var (
	_ Source = (*API)(nil)
	_ Writer = (*API)(nil)
)
