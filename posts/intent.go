package posts

import (
	"slices"

	"github.com/jonwraymond/postsync/users"
)

// Intent is a post mutation, expressed as the change it makes to a cached
// page. The set is closed: CreatePost, UpdatePost and DeletePost.
type Intent interface {
	Apply(p Page) Page
	isIntent()
}

// PlaceholderUsername is shown as the author of a post that has not been
// confirmed by the server yet.
const PlaceholderUsername = "You"

// CreatePost adds a post. TempID identifies the optimistic row until the
// server assigns a real ID; it should be negative so it never collides.
type CreatePost struct {
	Draft  Draft
	TempID int
}

// Apply prepends the draft and bumps Total.
func (c CreatePost) Apply(p Page) Page {
	row := PostWithAuthor{
		Post: Post{
			ID:     c.TempID,
			Title:  c.Draft.Title,
			Body:   c.Draft.Body,
			UserID: c.Draft.UserID,
		},
		Author: &users.Author{ID: c.Draft.UserID, Username: PlaceholderUsername},
	}
	posts := make([]PostWithAuthor, 0, len(p.Posts)+1)
	posts = append(posts, row)
	posts = append(posts, p.Posts...)
	p.Posts = posts
	p.Total++
	return p
}

// Resolve swaps the optimistic row for the server's post.
func (c CreatePost) Resolve(p Page, created Post) Page {
	i := slices.IndexFunc(p.Posts, func(row PostWithAuthor) bool { return row.ID == c.TempID })
	if i < 0 {
		return p
	}
	posts := slices.Clone(p.Posts)
	posts[i].Post = created
	p.Posts = posts
	return p
}

// UpdatePost replaces the editable fields of post ID.
type UpdatePost struct {
	ID    int
	Draft Draft
}

// Apply rewrites the matching row. The author is kept unless the draft
// moves the post to another user.
func (u UpdatePost) Apply(p Page) Page {
	i := slices.IndexFunc(p.Posts, func(row PostWithAuthor) bool { return row.ID == u.ID })
	if i < 0 {
		return p
	}
	posts := slices.Clone(p.Posts)
	row := posts[i]
	row.Title = u.Draft.Title
	row.Body = u.Draft.Body
	if u.Draft.UserID != 0 && u.Draft.UserID != row.UserID {
		row.UserID = u.Draft.UserID
		row.Author = nil
	}
	posts[i] = row
	p.Posts = posts
	return p
}

// Resolve merges the server's copy of the post into the matching row.
func (u UpdatePost) Resolve(p Page, updated Post) Page {
	i := slices.IndexFunc(p.Posts, func(row PostWithAuthor) bool { return row.ID == u.ID })
	if i < 0 {
		return p
	}
	posts := slices.Clone(p.Posts)
	posts[i].Post = updated
	p.Posts = posts
	return p
}

// DeletePost removes post ID.
type DeletePost struct {
	ID int
}

// Apply drops the matching row and decrements Total.
func (d DeletePost) Apply(p Page) Page {
	i := slices.IndexFunc(p.Posts, func(row PostWithAuthor) bool { return row.ID == d.ID })
	if i < 0 {
		return p
	}
	p.Posts = slices.Delete(slices.Clone(p.Posts), i, i+1)
	if p.Total > 0 {
		p.Total--
	}
	return p
}

func (CreatePost) isIntent() {}
func (UpdatePost) isIntent() {}
func (DeletePost) isIntent() {}

var (
	_ Intent = CreatePost{}
	_ Intent = UpdatePost{}
	_ Intent = DeletePost{}
)
