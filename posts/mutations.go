package posts

import (
	"context"

	"github.com/jonwraymond/postsync/querycache"
)

// applyAll patches every cached page under ScopeKey with in.
func applyAll(tx *querycache.Tx, in Intent) {
	querycache.PatchMatching(tx, ScopeKey(), func(_ querycache.Key, p Page) Page {
		return in.Apply(p)
	})
}

func invalidateScope[V, R any](V, R) []querycache.Key {
	return []querycache.Key{ScopeKey()}
}

// CreateMutation adds a post. The draft is prepended to every cached page
// before the request; on success the server's post replaces the placeholder.
func CreateMutation(api Writer) querycache.Mutation[CreatePost, Post] {
	return querycache.Mutation[CreatePost, Post]{
		Entity: Entity,
		Name:   "create",
		OnMutate: func(tx *querycache.Tx, in CreatePost) error {
			if err := in.Draft.Validate(); err != nil {
				return err
			}
			applyAll(tx, in)
			return nil
		},
		Fn: func(ctx context.Context, in CreatePost) (Post, error) {
			return api.CreatePost(ctx, in.Draft)
		},
		OnSuccess: func(tx *querycache.Tx, in CreatePost, created Post) {
			querycache.PatchMatching(tx, ScopeKey(), func(_ querycache.Key, p Page) Page {
				return in.Resolve(p, created)
			})
		},
		Invalidate: invalidateScope[CreatePost, Post],
	}
}

// UpdateMutation edits a post in place.
func UpdateMutation(api Writer) querycache.Mutation[UpdatePost, Post] {
	return querycache.Mutation[UpdatePost, Post]{
		Entity: Entity,
		Name:   "update",
		OnMutate: func(tx *querycache.Tx, in UpdatePost) error {
			if err := in.Draft.Validate(); err != nil {
				return err
			}
			applyAll(tx, in)
			return nil
		},
		Fn: func(ctx context.Context, in UpdatePost) (Post, error) {
			return api.UpdatePost(ctx, in.ID, in.Draft)
		},
		OnSuccess: func(tx *querycache.Tx, in UpdatePost, updated Post) {
			querycache.PatchMatching(tx, ScopeKey(), func(_ querycache.Key, p Page) Page {
				return in.Resolve(p, updated)
			})
		},
		Invalidate: invalidateScope[UpdatePost, Post],
	}
}

// DeleteMutation removes a post from every cached page before the request.
func DeleteMutation(api Writer) querycache.Mutation[DeletePost, Post] {
	return querycache.Mutation[DeletePost, Post]{
		Entity: Entity,
		Name:   "delete",
		OnMutate: func(tx *querycache.Tx, in DeletePost) error {
			applyAll(tx, in)
			return nil
		},
		Fn: func(ctx context.Context, in DeletePost) (Post, error) {
			return api.DeletePost(ctx, in.ID)
		},
		Invalidate: invalidateScope[DeletePost, Post],
	}
}
