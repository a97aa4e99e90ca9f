// Package uistate holds per-entity transient view state: the selected item
// and a closed set of named modal flags. Nothing here touches the query
// cache or is persisted.
package uistate
