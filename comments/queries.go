package comments

import (
	"context"
	"strconv"
	"time"

	"github.com/jonwraymond/postsync/querycache"
)

// Entity is the cache key root for comments.
const Entity = "comments"

// Freshness of comment pages: revalidate on every read.
const Freshness time.Duration = 0

// PostScope is the prefix shared by every comment page of postID.
func PostScope(postID int) querycache.Key {
	return querycache.Key{Entity, "post", strconv.Itoa(postID)}
}

type pageParams struct {
	Limit int `json:"limit,omitempty"`
	Skip  int `json:"skip,omitempty"`
}

// KeyFor returns the key of one comment page. Without pagination the key
// is the post scope itself.
func KeyFor(postID, limit, skip int) querycache.Key {
	return querycache.MustBuildKey(Entity, []string{"post", strconv.Itoa(postID)}, pageParams{Limit: limit, Skip: skip})
}

// ByPost describes the comments of postID.
func ByPost(api Lister, postID, limit, skip int) querycache.Descriptor[Page] {
	return querycache.Descriptor[Page]{
		Key:       KeyFor(postID, limit, skip),
		Freshness: Freshness,
		Fetch: func(ctx context.Context) (Page, error) {
			return api.ListByPost(ctx, postID, limit, skip)
		},
	}
}
