package posts

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/postsync/filter"
	"github.com/jonwraymond/postsync/querycache"
	"github.com/jonwraymond/postsync/request"
	"github.com/jonwraymond/postsync/users"
)

// Entity is the cache key root for posts.
const Entity = "posts"

// Freshness of post pages. Zero revalidates on every read; a new filter is a
// new key anyway.
const Freshness time.Duration = 0

// ScopeKey is the prefix shared by every author-joined post page.
func ScopeKey() querycache.Key {
	return querycache.Key{Entity, "authors"}
}

type keyParams struct {
	Limit       int    `json:"limit"`
	Skip        int    `json:"skip"`
	SearchQuery string `json:"searchQuery,omitempty"`
	SelectedTag string `json:"selectedTag,omitempty"`
	SortBy      string `json:"sortBy,omitempty"`
	SortOrder   string `json:"sortOrder,omitempty"`
}

// KeyFor returns the cache key of the page s describes.
func KeyFor(s filter.State) querycache.Key {
	return querycache.MustBuildKey(Entity, []string{"authors"}, keyParams{
		Limit:       s.Limit,
		Skip:        s.Skip,
		SearchQuery: s.SearchQuery,
		SelectedTag: s.SelectedTag,
		SortBy:      string(s.SortBy),
		SortOrder:   string(s.SortOrder),
	})
}

// WithAuthors describes the post page for s, joined with authors.
func WithAuthors(src Source, s filter.State) querycache.Descriptor[Page] {
	return querycache.Descriptor[Page]{
		Key:       KeyFor(s),
		Freshness: Freshness,
		Fetch: func(ctx context.Context) (Page, error) {
			return FetchWithAuthors(ctx, src, s)
		},
	}
}

// FetchWithAuthors loads posts and the author list concurrently and joins
// them. Either call failing fails the whole fetch.
func FetchWithAuthors(ctx context.Context, src Source, s filter.State) (Page, error) {
	adapter := AdapterFor(s)

	var (
		env     request.Envelope[Post]
		authors users.List
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		env, err = src.ListPosts(gctx, adapter.Params(s))
		return err
	})
	g.Go(func() error {
		var err error
		authors, err = src.ListAuthors(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Page{}, err
	}

	joined := JoinAuthors(env.Items, authors)
	if adapter.Active() {
		return adapter.Apply(joined, s.Skip, s.Limit), nil
	}
	return Page{Posts: joined, PageMeta: env.PageMeta}, nil
}

// JoinAuthors attaches each post's author by UserID.
func JoinAuthors(posts []Post, authors users.List) []PostWithAuthor {
	idx := authors.Index()
	out := make([]PostWithAuthor, len(posts))
	for i, p := range posts {
		out[i] = PostWithAuthor{Post: p}
		if a, ok := idx[p.UserID]; ok {
			out[i].Author = &a
		}
	}
	return out
}
