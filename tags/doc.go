// Package tags lists the post tags used by the tag filter.
package tags
