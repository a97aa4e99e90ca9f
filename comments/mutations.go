package comments

import (
	"context"

	"github.com/jonwraymond/postsync/querycache"
)

func applyAll(tx *querycache.Tx, in Intent) {
	querycache.PatchMatching(tx, PostScope(in.Post()), func(_ querycache.Key, p Page) Page {
		return in.Apply(p)
	})
}

func invalidatePost[V Intent](in V, _ Comment) []querycache.Key {
	return []querycache.Key{PostScope(in.Post())}
}

// CreateMutation adds a comment, appending it to the post's cached pages
// first.
func CreateMutation(api Writer) querycache.Mutation[CreateComment, Comment] {
	return querycache.Mutation[CreateComment, Comment]{
		Entity: Entity,
		Name:   "create",
		OnMutate: func(tx *querycache.Tx, in CreateComment) error {
			if err := in.Draft.Validate(); err != nil {
				return err
			}
			applyAll(tx, in)
			return nil
		},
		Fn: func(ctx context.Context, in CreateComment) (Comment, error) {
			return api.CreateComment(ctx, in.Draft)
		},
		OnSuccess: func(tx *querycache.Tx, in CreateComment, created Comment) {
			querycache.PatchMatching(tx, PostScope(in.Post()), func(_ querycache.Key, p Page) Page {
				return in.Resolve(p, created)
			})
		},
		Invalidate: invalidatePost[CreateComment],
	}
}

// UpdateMutation edits a comment body, then merges the server's copy.
func UpdateMutation(api Writer) querycache.Mutation[UpdateComment, Comment] {
	return querycache.Mutation[UpdateComment, Comment]{
		Entity: Entity,
		Name:   "update",
		OnMutate: func(tx *querycache.Tx, in UpdateComment) error {
			if err := validateBody(in.Body); err != nil {
				return err
			}
			applyAll(tx, in)
			return nil
		},
		Fn: func(ctx context.Context, in UpdateComment) (Comment, error) {
			return api.UpdateComment(ctx, in.ID, in.Body)
		},
		OnSuccess: func(tx *querycache.Tx, in UpdateComment, updated Comment) {
			querycache.PatchMatching(tx, PostScope(in.Post()), func(_ querycache.Key, p Page) Page {
				return in.Resolve(p, updated)
			})
		},
		Invalidate: invalidatePost[UpdateComment],
	}
}

// DeleteMutation removes a comment from the post's cached pages before the
// request.
func DeleteMutation(api Writer) querycache.Mutation[DeleteComment, Comment] {
	return querycache.Mutation[DeleteComment, Comment]{
		Entity: Entity,
		Name:   "delete",
		OnMutate: func(tx *querycache.Tx, in DeleteComment) error {
			applyAll(tx, in)
			return nil
		},
		Fn: func(ctx context.Context, in DeleteComment) (Comment, error) {
			return api.DeleteComment(ctx, in.ID)
		},
		Invalidate: invalidatePost[DeleteComment],
	}
}

// LikeMutation sets a comment's like count.
func LikeMutation(api Writer) querycache.Mutation[LikeComment, Comment] {
	return querycache.Mutation[LikeComment, Comment]{
		Entity: Entity,
		Name:   "like",
		OnMutate: func(tx *querycache.Tx, in LikeComment) error {
			applyAll(tx, in)
			return nil
		},
		Fn: func(ctx context.Context, in LikeComment) (Comment, error) {
			return api.LikeComment(ctx, in.ID, in.Likes)
		},
		Invalidate: invalidatePost[LikeComment],
	}
}
