// Package posts is the post entity: the REST calls, the author-joined list
// descriptor the post table reads through the cache, the client-side search
// adapter, and the create/update/delete mutations with their optimistic
// cache patches.
//
// Every post list lives under ScopeKey (posts/authors/<params hash>), so a
// post mutation patches and invalidates exactly that scope.
package posts
