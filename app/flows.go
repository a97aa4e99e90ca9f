package app

import (
	"context"
	"errors"

	"github.com/jonwraymond/postsync/comments"
	"github.com/jonwraymond/postsync/observe"
	"github.com/jonwraymond/postsync/posts"
	"github.com/jonwraymond/postsync/querycache"
	"github.com/jonwraymond/postsync/users"
)

// AddPost creates a post and closes the add dialog on success.
func (s *Session) AddPost(ctx context.Context, d posts.Draft) (posts.Post, error) {
	in := posts.CreatePost{Draft: d, TempID: s.nextTempID()}
	created, err := querycache.Mutate(ctx, s.cache, posts.CreateMutation(s.posts), in)
	if err != nil {
		return posts.Post{}, s.failed(ctx, "add post", err)
	}
	_ = s.PostUI.Close(posts.ModalAdd)
	return created, nil
}

// UpdatePost edits post id and closes the edit dialog on success.
func (s *Session) UpdatePost(ctx context.Context, id int, d posts.Draft) (posts.Post, error) {
	updated, err := querycache.Mutate(ctx, s.cache, posts.UpdateMutation(s.posts), posts.UpdatePost{ID: id, Draft: d})
	if err != nil {
		return posts.Post{}, s.failed(ctx, "update post", err)
	}
	_ = s.PostUI.Close(posts.ModalEdit)
	return updated, nil
}

// DeletePost deletes post id.
func (s *Session) DeletePost(ctx context.Context, id int) error {
	if _, err := querycache.Mutate(ctx, s.cache, posts.DeleteMutation(s.posts), posts.DeletePost{ID: id}); err != nil {
		return s.failed(ctx, "delete post", err)
	}
	return nil
}

// OpenPostDetail selects p and opens its detail dialog.
func (s *Session) OpenPostDetail(p posts.Post) {
	s.PostUI.Select(p)
	_ = s.PostUI.Open(posts.ModalDetail)
}

// OpenPostEditor selects p and opens the edit dialog.
func (s *Session) OpenPostEditor(p posts.Post) {
	s.PostUI.Select(p)
	_ = s.PostUI.Open(posts.ModalEdit)
}

// AddComment creates a comment and closes the add dialog on success. A
// blank body fails with a request.ValidationError before anything is sent.
func (s *Session) AddComment(ctx context.Context, d comments.Draft) (comments.Comment, error) {
	in := comments.CreateComment{Draft: d, TempID: s.nextTempID()}
	created, err := querycache.Mutate(ctx, s.cache, comments.CreateMutation(s.comments), in)
	if err != nil {
		return comments.Comment{}, s.failed(ctx, "add comment", err)
	}
	_ = s.CommentUI.Close(comments.ModalAdd)
	return created, nil
}

// UpdateComment replaces the body of c and closes the edit dialog on success.
func (s *Session) UpdateComment(ctx context.Context, c comments.Comment, body string) (comments.Comment, error) {
	in := comments.UpdateComment{ID: c.ID, PostID: c.PostID, Body: body}
	updated, err := querycache.Mutate(ctx, s.cache, comments.UpdateMutation(s.comments), in)
	if err != nil {
		return comments.Comment{}, s.failed(ctx, "update comment", err)
	}
	_ = s.CommentUI.Close(comments.ModalEdit)
	return updated, nil
}

// DeleteComment deletes comment id from the selected post.
func (s *Session) DeleteComment(ctx context.Context, id int) error {
	post, ok := s.PostUI.Selected()
	if !ok {
		return ErrNoSelectedPost
	}
	in := comments.DeleteComment{ID: id, PostID: post.ID}
	if _, err := querycache.Mutate(ctx, s.cache, comments.DeleteMutation(s.comments), in); err != nil {
		return s.failed(ctx, "delete comment", err)
	}
	return nil
}

// LikeComment adds one like to comment id of the selected post. The current
// count comes from the cached comment list.
func (s *Session) LikeComment(ctx context.Context, id int) (comments.Comment, error) {
	post, ok := s.PostUI.Selected()
	if !ok {
		return comments.Comment{}, ErrNoSelectedPost
	}
	page, _, err := querycache.Peek[comments.Page](s.cache, comments.KeyFor(post.ID, 0, 0))
	if err != nil && !errors.Is(err, querycache.ErrCacheMiss) {
		return comments.Comment{}, err
	}
	target, found := page.Find(id)
	if !found {
		return comments.Comment{}, ErrCommentNotFound
	}

	in := comments.LikeComment{ID: id, PostID: post.ID, Likes: target.Likes + 1}
	liked, err := querycache.Mutate(ctx, s.cache, comments.LikeMutation(s.comments), in)
	if err != nil {
		return comments.Comment{}, s.failed(ctx, "like comment", err)
	}
	return liked, nil
}

// OpenUserProfile loads the profile of id through the cache, selects it and
// opens the profile dialog.
func (s *Session) OpenUserProfile(ctx context.Context, id int) (users.Profile, error) {
	p, err := querycache.Query(ctx, s.cache, users.DetailQuery(s.users, id))
	if err != nil {
		return users.Profile{}, s.failed(ctx, "open user profile", err)
	}
	s.UserUI.Select(p)
	_ = s.UserUI.Open(users.ModalProfile)
	return p, nil
}

// failed logs a flow error and returns it unchanged.
func (s *Session) failed(ctx context.Context, flow string, err error) error {
	s.logger().Error(ctx, flow+" failed", observe.F("error", err.Error()))
	return err
}
