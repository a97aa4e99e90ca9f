package comments

import (
	"strings"

	"github.com/jonwraymond/postsync/request"
)

// User is the commenter summary embedded in a comment.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// Comment is one comment on a post.
type Comment struct {
	ID     int    `json:"id"`
	Body   string `json:"body"`
	PostID int    `json:"postId"`
	UserID int    `json:"userId"`
	Likes  int    `json:"likes"`
	User   User   `json:"user"`
}

// Page is one page of a post's comments.
type Page struct {
	Comments []Comment
	request.PageMeta
}

// Find returns the comment with id.
func (p Page) Find(id int) (Comment, bool) {
	for _, c := range p.Comments {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

// Draft is the form data for a new comment.
type Draft struct {
	Body   string `json:"body"`
	PostID int    `json:"postId"`
	UserID int    `json:"userId"`
}

// Validate rejects a blank body before anything is sent.
func (d Draft) Validate() error {
	if err := validateBody(d.Body); err != nil {
		return err
	}
	if d.PostID <= 0 {
		return &request.ValidationError{Field: "postId", Message: "post is required"}
	}
	return nil
}

func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return &request.ValidationError{Field: "body", Message: "comment body is required"}
	}
	return nil
}
