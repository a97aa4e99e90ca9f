package app

import "errors"

// Sentinel errors for session flows.
var (
	ErrNoSelectedPost  = errors.New("app: no post selected")
	ErrCommentNotFound = errors.New("app: comment not found in the cached list")
)
