package posts

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/jonwraymond/postsync/filter"
	"github.com/jonwraymond/postsync/request"
)

// SearchAdapter filters, sorts and pages posts on the client. The backend's
// q and tag parameters are only hints, so whenever a search or tag filter is
// active the full list is fetched and narrowed here.
type SearchAdapter struct {
	Query  string
	Tag    string
	SortBy filter.SortBy
	Order  filter.SortOrder
}

// AdapterFor returns the adapter for s. The AllTags option does not filter.
func AdapterFor(s filter.State) SearchAdapter {
	tag := s.SelectedTag
	if tag == filter.AllTags {
		tag = ""
	}
	return SearchAdapter{
		Query:  strings.TrimSpace(s.SearchQuery),
		Tag:    tag,
		SortBy: s.SortBy,
		Order:  s.SortOrder,
	}
}

// Active reports whether the adapter narrows the list.
func (a SearchAdapter) Active() bool {
	return a.Query != "" || a.Tag != ""
}

// Params returns the list call for s: the whole list with hints when the
// adapter is active, otherwise server-side paging and sorting.
func (a SearchAdapter) Params(s filter.State) ListParams {
	if a.Active() {
		return ListParams{Limit: 0, Query: a.Query, Tag: a.Tag}
	}
	p := ListParams{Limit: s.Limit, Skip: s.Skip}
	if s.SortBy != filter.SortNone {
		p.SortBy = string(s.SortBy)
		p.Order = string(s.SortOrder)
	}
	return p
}

// Matches reports whether p passes the search and tag filters. The search
// is a case-insensitive substring match over title and body.
func (a SearchAdapter) Matches(p Post) bool {
	if a.Tag != "" && !p.HasTag(a.Tag) {
		return false
	}
	if a.Query == "" {
		return true
	}
	q := strings.ToLower(a.Query)
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Body), q)
}

// Apply narrows posts, sorts them and cuts out the page at skip/limit.
// Total is the size of the filtered set.
func (a SearchAdapter) Apply(posts []PostWithAuthor, skip, limit int) Page {
	matched := make([]PostWithAuthor, 0, len(posts))
	for _, p := range posts {
		if a.Matches(p.Post) {
			matched = append(matched, p)
		}
	}
	Sort(matched, a.SortBy, a.Order)

	total := len(matched)
	lo := min(max(skip, 0), total)
	hi := total
	if limit > 0 {
		hi = min(lo+limit, total)
	}
	return Page{
		Posts:    slices.Clone(matched[lo:hi]),
		PageMeta: request.PageMeta{Total: total, Skip: skip, Limit: limit},
	}
}

// Sort orders posts in place. SortNone keeps the input order.
func Sort(posts []PostWithAuthor, by filter.SortBy, order filter.SortOrder) {
	var less func(a, b PostWithAuthor) int
	switch by {
	case filter.SortByID:
		less = func(a, b PostWithAuthor) int { return cmp.Compare(a.ID, b.ID) }
	case filter.SortByTitle:
		less = func(a, b PostWithAuthor) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case filter.SortByReactions:
		less = func(a, b PostWithAuthor) int { return cmp.Compare(a.Reactions.Likes, b.Reactions.Likes) }
	default:
		return
	}
	if order == filter.Desc {
		asc := less
		less = func(a, b PostWithAuthor) int { return asc(b, a) }
	}
	slices.SortStableFunc(posts, less)
}

// Segment is a run of text that either matches the search or not.
type Segment struct {
	Text  string
	Match bool
}

// Highlight splits text into segments around case-insensitive occurrences
// of query. A blank query yields one unmatched segment.
func Highlight(text, query string) []Segment {
	if text == "" {
		return nil
	}
	if strings.TrimSpace(query) == "" {
		return []Segment{{Text: text}}
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	var out []Segment
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			out = append(out, Segment{Text: text[last:loc[0]]})
		}
		out = append(out, Segment{Text: text[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, Segment{Text: text[last:]})
	}
	return out
}
