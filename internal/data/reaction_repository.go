package data

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ReactionRepository manages the like/dislike join records.
type ReactionRepository struct {
	db sqlx.ExtContext
}

// NewReactionRepository creates a new ReactionRepository.
func NewReactionRepository(db sqlx.ExtContext) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// targetColumn is the foreign key column of each reaction table.
func (k Reaction) targetColumn() string {
	if k == PostLike {
		return "post_id"
	}
	return "comment_id"
}

// Insert records that userID reacted with kind on targetID. A second
// reaction of the same kind by the same user returns ErrDuplicate.
func (r *ReactionRepository) Insert(ctx context.Context, kind Reaction, userID, targetID int64) error {
	query := fmt.Sprintf("INSERT INTO %s (user_id, %s) VALUES (?, ?)", kind, kind.targetColumn())
	if _, err := r.db.ExecContext(ctx, query, userID, targetID); err != nil {
		return fmt.Errorf("failed to insert %s record: %w", kind, classify(err))
	}
	return nil
}

// Delete removes the reaction of userID on targetID. It returns ErrNotFound
// when there is nothing to remove.
func (r *ReactionRepository) Delete(ctx context.Context, kind Reaction, userID, targetID int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND %s = ?", kind, kind.targetColumn())
	res, err := r.db.ExecContext(ctx, query, userID, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", kind, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s by user %d on %d: %w", kind, userID, targetID, ErrNotFound)
	}
	return nil
}

// Exists reports whether userID has reacted with kind on targetID.
func (r *ReactionRepository) Exists(ctx context.Context, kind Reaction, userID, targetID int64) (bool, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE user_id = ? AND %s = ?", kind, kind.targetColumn())
	if err := sqlx.GetContext(ctx, r.db, &n, query, userID, targetID); err != nil {
		return false, classify(err)
	}
	return n > 0, nil
}

// Count returns the number of kind records on targetID.
func (r *ReactionRepository) Count(ctx context.Context, kind Reaction, targetID int64) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", kind, kind.targetColumn())
	if err := sqlx.GetContext(ctx, r.db, &n, query, targetID); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// DeleteForComment removes every like and dislike on a comment.
func (r *ReactionRepository) DeleteForComment(ctx context.Context, commentID int64) error {
	for _, kind := range []Reaction{CommentLike, CommentDislike} {
		query := fmt.Sprintf("DELETE FROM %s WHERE comment_id = ?", kind)
		if _, err := r.db.ExecContext(ctx, query, commentID); err != nil {
			return fmt.Errorf("failed to delete %s of comment %d: %w", kind, commentID, classify(err))
		}
	}
	return nil
}

// DeleteForPost removes the post's likes and every reaction on its comments.
func (r *ReactionRepository) DeleteForPost(ctx context.Context, postID int64) error {
	for _, kind := range []Reaction{CommentLike, CommentDislike} {
		query := fmt.Sprintf("DELETE FROM %s WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?)", kind)
		if _, err := r.db.ExecContext(ctx, query, postID); err != nil {
			return fmt.Errorf("failed to delete %s under post %d: %w", kind, postID, classify(err))
		}
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM post_likes WHERE post_id = ?", postID); err != nil {
		return fmt.Errorf("failed to delete likes of post %d: %w", postID, classify(err))
	}
	return nil
}
