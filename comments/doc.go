// Package comments is the comment entity: per-post comment lists, the
// create/update/delete/like mutations and their optimistic patches.
//
// A post's comment pages all live under PostScope(postID), which is the
// only scope a comment mutation touches.
package comments
