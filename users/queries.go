package users

import (
	"context"
	"strconv"
	"time"

	"github.com/jonwraymond/postsync/querycache"
)

// Entity is the cache key root for users.
const Entity = "users"

// Freshness windows.
const (
	ListFreshness   = 5 * time.Minute
	DetailFreshness = 10 * time.Minute
)

// ListKey is the key of the author list.
func ListKey() querycache.Key {
	return querycache.Key{Entity, "list"}
}

// DetailKey is the key of one profile.
func DetailKey(id int) querycache.Key {
	return querycache.Key{Entity, "detail", strconv.Itoa(id)}
}

// ListQuery describes the author list.
func ListQuery(api AuthorLister) querycache.Descriptor[List] {
	return querycache.Descriptor[List]{
		Key:       ListKey(),
		Freshness: ListFreshness,
		Fetch:     api.ListAuthors,
	}
}

// DetailQuery describes one full profile.
func DetailQuery(api ProfileGetter, id int) querycache.Descriptor[Profile] {
	return querycache.Descriptor[Profile]{
		Key:       DetailKey(id),
		Freshness: DetailFreshness,
		Fetch: func(ctx context.Context) (Profile, error) {
			return api.GetProfile(ctx, id)
		},
	}
}
