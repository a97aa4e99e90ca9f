// Package auth attaches bearer credentials to outgoing backend requests.
//
// A TokenSource supplies the token and Transport injects it as an
// Authorization header. JWT tokens are inspected without verification so an
// expired token is refused locally instead of being sent.
package auth
