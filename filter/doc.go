// Package filter derives list-view parameters (pagination, search, tag and
// sort) from a URL query string and writes changes back to it.
//
// The query string is the only copy of the state: Store.Read parses it on
// every call, so navigation (back/forward, reload) can never leave the view
// and its URL disagreeing.
package filter
