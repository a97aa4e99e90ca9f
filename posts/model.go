package posts

import (
	"strings"

	"github.com/jonwraymond/postsync/request"
	"github.com/jonwraymond/postsync/users"
)

// Reactions are the like and dislike counters on a post.
type Reactions struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Post is a post as the backend returns it.
type Post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UserID    int       `json:"userId"`
	Tags      []string  `json:"tags,omitempty"`
	Reactions Reactions `json:"reactions"`
}

// HasTag reports whether p carries tag.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PostWithAuthor is a post joined with its author. Author is nil when the
// user list had no match for UserID.
type PostWithAuthor struct {
	Post
	Author *users.Author `json:"author,omitempty"`
}

// Page is one page of the post table.
type Page struct {
	Posts []PostWithAuthor
	request.PageMeta
}

// Find returns the post with id.
func (p Page) Find(id int) (PostWithAuthor, bool) {
	for _, post := range p.Posts {
		if post.ID == id {
			return post, true
		}
	}
	return PostWithAuthor{}, false
}

// Draft is the form data for creating or updating a post.
type Draft struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// Validate rejects drafts the backend would store empty.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &request.ValidationError{Field: "title", Message: "title is required"}
	}
	if d.UserID <= 0 {
		return &request.ValidationError{Field: "userId", Message: "author is required"}
	}
	return nil
}
