package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CommentRepository handles database operations for comments.
type CommentRepository struct {
	db sqlx.ExtContext
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db sqlx.ExtContext) *CommentRepository {
	return &CommentRepository{db: db}
}

// CreateComment inserts a comment and sets its ID.
func (r *CommentRepository) CreateComment(ctx context.Context, c *Comment) error {
	query := `INSERT INTO comments (post_id, user_id, body, body_html, like_count, dislike_count, created_at)
		VALUES (:post_id, :user_id, :body, :body_html, :like_count, :dislike_count, :created_at)`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, c)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new comment id: %w", err)
	}
	c.ID = id
	return nil
}

// GetCommentByID retrieves a comment with its author's username.
func (r *CommentRepository) GetCommentByID(ctx context.Context, id int64) (*Comment, error) {
	var c Comment
	query := `SELECT c.id, c.post_id, c.user_id, c.body, c.body_html, c.like_count, c.dislike_count, c.created_at, u.username
		FROM comments c JOIN users u ON u.id = c.user_id WHERE c.id = ?`
	if err := sqlx.GetContext(ctx, r.db, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment with id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get comment by id: %w", classify(err))
	}
	return &c, nil
}

// ListByPost returns a post's comments newest first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64, limit, offset int) ([]*Comment, error) {
	var comments []*Comment
	query := `SELECT c.id, c.post_id, c.user_id, c.body, c.body_html, c.like_count, c.dislike_count, c.created_at, u.username
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ? ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`
	if err := sqlx.SelectContext(ctx, r.db, &comments, query, postID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", classify(err))
	}
	return comments, nil
}

// CountByPost counts the comments attached to a post.
func (r *CommentRepository) CountByPost(ctx context.Context, postID int64) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// DeleteComment removes one comment row. Its reactions must be removed first.
func (r *CommentRepository) DeleteComment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no comment found to delete with id %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteByPost removes every comment of a post and reports how many were removed.
func (r *CommentRepository) DeleteByPost(ctx context.Context, postID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments of post %d: %w", postID, classify(err))
	}
	return res.RowsAffected()
}

// AdjustLikeCount adds delta to the comment's like count.
func (r *CommentRepository) AdjustLikeCount(ctx context.Context, id int64, delta int) error {
	return adjustCounter(ctx, r.db, "comments", "like_count", id, delta)
}

// AdjustDislikeCount adds delta to the comment's dislike count.
func (r *CommentRepository) AdjustDislikeCount(ctx context.Context, id int64, delta int) error {
	return adjustCounter(ctx, r.db, "comments", "dislike_count", id, delta)
}
