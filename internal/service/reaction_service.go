package service

import (
	"context"
	"errors"
	"fmt"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/data"
)

// ReactionService is the ledger of likes and dislikes. Every join record
// and the counter it justifies change in the same transaction.
type ReactionService struct {
	core
}

// NewReactionService creates a new ReactionService.
func NewReactionService(d Deps) *ReactionService {
	return &ReactionService{core: newCore(d)}
}

// LikePost records a like and returns the post's new like count.
func (s *ReactionService) LikePost(ctx context.Context, id auth.Identity, postID int64) (int, error) {
	return s.apply(ctx, id, "like_post", data.PostLike, postID, 1)
}

// UnlikePost withdraws a like and returns the post's new like count.
func (s *ReactionService) UnlikePost(ctx context.Context, id auth.Identity, postID int64) (int, error) {
	return s.apply(ctx, id, "unlike_post", data.PostLike, postID, -1)
}

// LikeComment records a like and returns the comment's new like count.
func (s *ReactionService) LikeComment(ctx context.Context, id auth.Identity, commentID int64) (int, error) {
	return s.apply(ctx, id, "like_comment", data.CommentLike, commentID, 1)
}

// UnlikeComment withdraws a like and returns the comment's new like count.
func (s *ReactionService) UnlikeComment(ctx context.Context, id auth.Identity, commentID int64) (int, error) {
	return s.apply(ctx, id, "unlike_comment", data.CommentLike, commentID, -1)
}

// DislikeComment records a dislike and returns the comment's new dislike count.
func (s *ReactionService) DislikeComment(ctx context.Context, id auth.Identity, commentID int64) (int, error) {
	return s.apply(ctx, id, "dislike_comment", data.CommentDislike, commentID, 1)
}

// UndislikeComment withdraws a dislike and returns the comment's new dislike count.
func (s *ReactionService) UndislikeComment(ctx context.Context, id auth.Identity, commentID int64) (int, error) {
	return s.apply(ctx, id, "undislike_comment", data.CommentDislike, commentID, -1)
}

// HasLikedPost reports whether the caller currently likes a post. Anonymous
// callers never do.
func (s *ReactionService) HasLikedPost(ctx context.Context, id auth.Identity, postID int64) (bool, error) {
	userID, ok := id.UserID()
	if !ok {
		return false, nil
	}
	return s.Store.Read().Reactions.Exists(ctx, data.PostLike, userID, postID)
}

// apply inserts (delta 1) or deletes (delta -1) one join record and moves
// the target's counter by the same amount.
func (s *ReactionService) apply(ctx context.Context, id auth.Identity, op string, kind data.Reaction, targetID int64, delta int) (int, error) {
	userID, ok := id.UserID()
	if !ok {
		return 0, ErrUnauthorized
	}

	var count int
	err := s.atomic(ctx, op, func(tx *data.Tx) error {
		if err := targetExists(ctx, tx, kind, targetID); err != nil {
			return err
		}
		if delta > 0 {
			if err := tx.Reactions.Insert(ctx, kind, userID, targetID); err != nil {
				if errors.Is(err, data.ErrDuplicate) {
					return fmt.Errorf("%s by user %d on %d: %w", kind, userID, targetID, ErrAlreadyReacted)
				}
				return err
			}
		} else {
			if err := tx.Reactions.Delete(ctx, kind, userID, targetID); err != nil {
				return err
			}
		}
		var err error
		count, err = adjustReactionCount(ctx, tx, kind, targetID, delta)
		return err
	})
	if err != nil {
		return 0, err
	}
	if kind == data.PostLike {
		s.invalidate(postKey(targetID))
	}
	return count, nil
}

func targetExists(ctx context.Context, tx *data.Tx, kind data.Reaction, targetID int64) error {
	if kind == data.PostLike {
		_, err := tx.Posts.GetPostByID(ctx, targetID)
		return err
	}
	_, err := tx.Comments.GetCommentByID(ctx, targetID)
	return err
}

// adjustReactionCount moves the counter that mirrors kind and returns its new value.
func adjustReactionCount(ctx context.Context, tx *data.Tx, kind data.Reaction, targetID int64, delta int) (int, error) {
	switch kind {
	case data.PostLike:
		if err := tx.Posts.AdjustLikeCount(ctx, targetID, delta); err != nil {
			return 0, err
		}
		p, err := tx.Posts.GetPostByID(ctx, targetID)
		if err != nil {
			return 0, err
		}
		return p.LikeCount, nil
	case data.CommentLike:
		if err := tx.Comments.AdjustLikeCount(ctx, targetID, delta); err != nil {
			return 0, err
		}
		c, err := tx.Comments.GetCommentByID(ctx, targetID)
		if err != nil {
			return 0, err
		}
		return c.LikeCount, nil
	case data.CommentDislike:
		if err := tx.Comments.AdjustDislikeCount(ctx, targetID, delta); err != nil {
			return 0, err
		}
		c, err := tx.Comments.GetCommentByID(ctx, targetID)
		if err != nil {
			return 0, err
		}
		return c.DislikeCount, nil
	}
	return 0, fmt.Errorf("unknown reaction %q", kind)
}
