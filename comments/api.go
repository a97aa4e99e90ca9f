package comments

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jonwraymond/postsync/request"
)

// Lister lists a post's comments. Zero limit and skip leave pagination to
// the backend.
type Lister interface {
	ListByPost(ctx context.Context, postID, limit, skip int) (Page, error)
}

// Writer performs the comment writes.
type Writer interface {
	CreateComment(ctx context.Context, d Draft) (Comment, error)
	UpdateComment(ctx context.Context, id int, body string) (Comment, error)
	DeleteComment(ctx context.Context, id int) (Comment, error)
	LikeComment(ctx context.Context, id, likes int) (Comment, error)
}

// API is the comments endpoint group.
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

// ListByPost fetches the comments of postID.
func (a *API) ListByPost(ctx context.Context, postID, limit, skip int) (Page, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	env, err := request.GetPage[Comment](ctx, a.c, "/comments/post/"+strconv.Itoa(postID), q, "comments")
	if err != nil {
		return Page{}, err
	}
	return Page{Comments: env.Items, PageMeta: env.PageMeta}, nil
}

// CreateComment adds a comment.
func (a *API) CreateComment(ctx context.Context, d Draft) (Comment, error) {
	return request.Post[Comment](ctx, a.c, "/comments/add", d)
}

// UpdateComment replaces the body of comment id.
func (a *API) UpdateComment(ctx context.Context, id int, body string) (Comment, error) {
	return request.Put[Comment](ctx, a.c, commentPath(id), struct {
		Body string `json:"body"`
	}{body})
}

// DeleteComment deletes comment id.
func (a *API) DeleteComment(ctx context.Context, id int) (Comment, error) {
	return request.Delete[Comment](ctx, a.c, commentPath(id))
}

// LikeComment sets the like count of comment id.
func (a *API) LikeComment(ctx context.Context, id, likes int) (Comment, error) {
	return request.Patch[Comment](ctx, a.c, commentPath(id), struct {
		Likes int `json:"likes"`
	}{likes})
}

func commentPath(id int) string {
	return "/comments/" + strconv.Itoa(id)
}

var (
	_ Lister = (*API)(nil)
	_ Writer = (*API)(nil)
)
