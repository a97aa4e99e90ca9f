package users

import "github.com/jonwraymond/postsync/request"

// Author is the lightweight user shape returned by the select=username,image
// list call.
type Author struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

// List is one page of authors.
type List struct {
	Users []Author
	request.PageMeta
}

// Index returns the authors keyed by ID.
func (l List) Index() map[int]Author {
	idx := make(map[int]Author, len(l.Users))
	for _, u := range l.Users {
		idx[u.ID] = u
	}
	return idx
}

// Address is the postal block of a Profile.
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
}

// Company is the employer block of a Profile.
type Company struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Profile is the full user record.
type Profile struct {
	ID        int     `json:"id"`
	Username  string  `json:"username"`
	Image     string  `json:"image"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Age       int     `json:"age"`
	Address   Address `json:"address"`
	Company   Company `json:"company"`
}

// FullName joins first and last name.
func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Author returns the lightweight view of p.
func (p Profile) Author() Author {
	return Author{ID: p.ID, Username: p.Username, Image: p.Image}
}
