package tags

import (
	"context"
	"time"

	"github.com/jonwraymond/postsync/filter"
	"github.com/jonwraymond/postsync/querycache"
	"github.com/jonwraymond/postsync/request"
)

// Entity is the cache key root for tags.
const Entity = "tags"

// Freshness is how long the tag list is served from cache.
const Freshness = 30 * time.Minute

// AllTags is the filter option meaning "no tag filter".
const AllTags = filter.AllTags

// Tag is one post tag.
type Tag struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Lister lists every tag.
type Lister interface {
	ListTags(ctx context.Context) ([]Tag, error)
}

// API is the tags endpoint group.
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

// ListTags fetches the full tag list. The endpoint returns a bare array.
func (a *API) ListTags(ctx context.Context) ([]Tag, error) {
	tags, err := request.Get[[]Tag](ctx, a.c, "/posts/tags", nil)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []Tag{}
	}
	return tags, nil
}

// Key is the key of the tag list.
func Key() querycache.Key {
	return querycache.Key{Entity}
}

// ListQuery describes the tag list.
func ListQuery(api Lister) querycache.Descriptor[[]Tag] {
	return querycache.Descriptor[[]Tag]{
		Key:       Key(),
		Freshness: Freshness,
		Fetch:     api.ListTags,
	}
}

// Options returns the filter options for tags: AllTags first, then every slug.
func Options(tags []Tag) []string {
	out := make([]string, 0, len(tags)+1)
	out = append(out, AllTags)
	for _, t := range tags {
		out = append(out, t.Slug)
	}
	return out
}

var _ Lister = (*API)(nil)
