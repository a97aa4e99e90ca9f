package filter

// Pagination answers the questions a pager control asks about one page of
// a list of Total items.
type Pagination struct {
	Total int
	Skip  int
	Limit int
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Skip > 0
}

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool {
	return p.Skip+p.Limit < p.Total
}

// Prev returns the skip of the previous page, clamped to zero.
func (p Pagination) Prev() int {
	return max(0, p.Skip-p.Limit)
}

// Next returns the skip of the next page.
func (p Pagination) Next() int {
	return p.Skip + p.Limit
}

// Page returns the 1-based current page number.
func (p Pagination) Page() int {
	if p.Limit <= 0 {
		return 1
	}
	return p.Skip/p.Limit + 1
}

// Pages returns the total page count.
func (p Pagination) Pages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}
