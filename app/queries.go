package app

import (
	"context"

	"github.com/jonwraymond/postsync/comments"
	"github.com/jonwraymond/postsync/posts"
	"github.com/jonwraymond/postsync/querycache"
	"github.com/jonwraymond/postsync/tags"
	"github.com/jonwraymond/postsync/users"
)

// Posts reads the post page the current filter state describes.
func (s *Session) Posts(ctx context.Context) (posts.Page, error) {
	return querycache.Query(ctx, s.cache, posts.WithAuthors(s.posts, s.Filter.Read()))
}

// PeekPosts returns the cached post page for the current filter state
// without fetching.
func (s *Session) PeekPosts() (posts.Page, querycache.Entry, error) {
	return querycache.Peek[posts.Page](s.cache, posts.KeyFor(s.Filter.Read()))
}

// Tags reads the tag list.
func (s *Session) Tags(ctx context.Context) ([]tags.Tag, error) {
	return querycache.Query(ctx, s.cache, tags.ListQuery(s.tags))
}

// Comments reads every comment of postID.
func (s *Session) Comments(ctx context.Context, postID int) (comments.Page, error) {
	return querycache.Query(ctx, s.cache, comments.ByPost(s.comments, postID, 0, 0))
}

// Authors reads the lightweight user list.
func (s *Session) Authors(ctx context.Context) (users.List, error) {
	return querycache.Query(ctx, s.cache, users.ListQuery(s.users))
}
