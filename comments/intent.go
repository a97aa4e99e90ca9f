package comments

import "slices"

// Intent is a comment mutation, expressed as the change it makes to a
// cached page. The set is closed: CreateComment, UpdateComment,
// DeleteComment and LikeComment.
type Intent interface {
	Apply(p Page) Page
	Post() int
	isIntent()
}

// CreateComment adds a comment. TempID marks the optimistic row until the
// server answers.
type CreateComment struct {
	Draft  Draft
	TempID int
}

// Post implements Intent.
func (c CreateComment) Post() int { return c.Draft.PostID }

// Apply appends the draft and bumps Total.
func (c CreateComment) Apply(p Page) Page {
	row := Comment{
		ID:     c.TempID,
		Body:   c.Draft.Body,
		PostID: c.Draft.PostID,
		UserID: c.Draft.UserID,
		User:   User{ID: c.Draft.UserID},
	}
	p.Comments = append(slices.Clip(p.Comments), row)
	p.Total++
	return p
}

// Resolve swaps the optimistic row for the server's comment.
func (c CreateComment) Resolve(p Page, created Comment) Page {
	return replace(p, c.TempID, func(Comment) Comment { return created })
}

// UpdateComment replaces the body of comment ID on PostID.
type UpdateComment struct {
	ID     int
	PostID int
	Body   string
}

// Post implements Intent.
func (u UpdateComment) Post() int { return u.PostID }

// Apply rewrites the body of the matching comment.
func (u UpdateComment) Apply(p Page) Page {
	return replace(p, u.ID, func(c Comment) Comment {
		c.Body = u.Body
		return c
	})
}

// Resolve merges the server's copy of the comment into p. Blocks the
// server leaves out keep their cached values.
func (u UpdateComment) Resolve(p Page, updated Comment) Page {
	return replace(p, u.ID, func(c Comment) Comment {
		if updated.Body != "" {
			c.Body = updated.Body
		}
		if updated.PostID != 0 {
			c.PostID = updated.PostID
		}
		if updated.UserID != 0 {
			c.UserID = updated.UserID
		}
		if updated.User.ID != 0 {
			c.User = updated.User
		}
		c.Likes = updated.Likes
		return c
	})
}

// DeleteComment removes comment ID from PostID.
type DeleteComment struct {
	ID     int
	PostID int
}

// Post implements Intent.
func (d DeleteComment) Post() int { return d.PostID }

// Apply drops the matching comment and decrements Total.
func (d DeleteComment) Apply(p Page) Page {
	i := slices.IndexFunc(p.Comments, func(c Comment) bool { return c.ID == d.ID })
	if i < 0 {
		return p
	}
	p.Comments = slices.Delete(slices.Clone(p.Comments), i, i+1)
	if p.Total > 0 {
		p.Total--
	}
	return p
}

// LikeComment sets the like count of comment ID to Likes.
type LikeComment struct {
	ID     int
	PostID int
	Likes  int
}

// Post implements Intent.
func (l LikeComment) Post() int { return l.PostID }

// Apply sets the like count of the matching comment.
func (l LikeComment) Apply(p Page) Page {
	return replace(p, l.ID, func(c Comment) Comment {
		c.Likes = l.Likes
		return c
	})
}

// replace rewrites the comment with id in a copy of p.
func replace(p Page, id int, fn func(Comment) Comment) Page {
	i := slices.IndexFunc(p.Comments, func(c Comment) bool { return c.ID == id })
	if i < 0 {
		return p
	}
	out := slices.Clone(p.Comments)
	out[i] = fn(out[i])
	p.Comments = out
	return p
}

func (CreateComment) isIntent() {}
func (UpdateComment) isIntent() {}
func (DeleteComment) isIntent() {}
func (LikeComment) isIntent()   {}

var (
	_ Intent = CreateComment{}
	_ Intent = UpdateComment{}
	_ Intent = DeleteComment{}
	_ Intent = LikeComment{}
)
