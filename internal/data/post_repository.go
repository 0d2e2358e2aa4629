package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const postColumns = `id, title, body, body_html, summary, summary_html, category_id, comment_count, like_count, created_at, updated_at`

// PostRepository handles database operations for posts and their label links.
type PostRepository struct {
	db sqlx.ExtContext
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db sqlx.ExtContext) *PostRepository {
	return &PostRepository{db: db}
}

// CreatePost inserts a new post and sets its ID.
func (r *PostRepository) CreatePost(ctx context.Context, post *Post) error {
	query := `INSERT INTO posts (title, body, body_html, summary, summary_html, category_id, comment_count, like_count, created_at, updated_at)
		VALUES (:title, :body, :body_html, :summary, :summary_html, :category_id, :comment_count, :like_count, :created_at, :updated_at)`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, post)
	if err != nil {
		return fmt.Errorf("failed to execute create post query: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new post id: %w", err)
	}
	post.ID = id
	return nil
}

// GetPostByID retrieves a single post by its ID.
func (r *PostRepository) GetPostByID(ctx context.Context, id int64) (*Post, error) {
	var post Post
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ?`
	if err := sqlx.GetContext(ctx, r.db, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post with id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by id: %w", classify(err))
	}
	return &post, nil
}

// UpdatePost writes the editable fields of an existing post.
func (r *PostRepository) UpdatePost(ctx context.Context, post *Post) error {
	query := `UPDATE posts SET title = :title, body = :body, body_html = :body_html,
		summary = :summary, summary_html = :summary_html, updated_at = :updated_at WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.db, query, post)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", classify(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no post found to update with id %d: %w", post.ID, ErrNotFound)
	}
	return nil
}

// DeletePost removes a post row. Label links must be removed first.
func (r *PostRepository) DeletePost(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", classify(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no post found to delete with id %d: %w", id, ErrNotFound)
	}
	return nil
}

// LabelIDs returns the ids of the labels currently linked to a post.
func (r *PostRepository) LabelIDs(ctx context.Context, postID int64) ([]int64, error) {
	var ids []int64
	if err := sqlx.SelectContext(ctx, r.db, &ids, `SELECT label_id FROM post_labels WHERE post_id = ?`, postID); err != nil {
		return nil, fmt.Errorf("failed to list post labels: %w", classify(err))
	}
	return ids, nil
}

// LinkLabel attaches a label to a post.
func (r *PostRepository) LinkLabel(ctx context.Context, postID, labelID int64) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO post_labels (post_id, label_id) VALUES (?, ?)`, postID, labelID); err != nil {
		return fmt.Errorf("failed to link label %d to post %d: %w", labelID, postID, classify(err))
	}
	return nil
}

// UnlinkLabel detaches a label from a post.
func (r *PostRepository) UnlinkLabel(ctx context.Context, postID, labelID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM post_labels WHERE post_id = ? AND label_id = ?`, postID, labelID)
	if err != nil {
		return fmt.Errorf("failed to unlink label %d from post %d: %w", labelID, postID, classify(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("label %d not linked to post %d: %w", labelID, postID, ErrNotFound)
	}
	return nil
}

// ListPosts returns posts newest first.
func (r *PostRepository) ListPosts(ctx context.Context, limit, offset int) ([]*Post, error) {
	var posts []*Post
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	if err := sqlx.SelectContext(ctx, r.db, &posts, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", classify(err))
	}
	return posts, nil
}

// ListPostsByCategory returns the posts of one category newest first.
func (r *PostRepository) ListPostsByCategory(ctx context.Context, categoryID int64, limit, offset int) ([]*Post, error) {
	var posts []*Post
	query := `SELECT ` + postColumns + ` FROM posts WHERE category_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	if err := sqlx.SelectContext(ctx, r.db, &posts, query, categoryID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to get posts by category id: %w", classify(err))
	}
	return posts, nil
}

// ListPostsByLabel returns the posts carrying one label newest first.
func (r *PostRepository) ListPostsByLabel(ctx context.Context, labelID int64, limit, offset int) ([]*Post, error) {
	var posts []*Post
	query := `SELECT p.id, p.title, p.body, p.body_html, p.summary, p.summary_html, p.category_id,
		p.comment_count, p.like_count, p.created_at, p.updated_at
		FROM posts p JOIN post_labels pl ON pl.post_id = p.id
		WHERE pl.label_id = ? ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`
	if err := sqlx.SelectContext(ctx, r.db, &posts, query, labelID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to get posts by label id: %w", classify(err))
	}
	return posts, nil
}

// CountByCategory counts live posts assigned to a category.
func (r *PostRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM posts WHERE category_id = ?`, categoryID); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// CountByLabel counts live posts linked to a label.
func (r *PostRepository) CountByLabel(ctx context.Context, labelID int64) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM post_labels WHERE label_id = ?`, labelID); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// AdjustCommentCount adds delta to the post's comment count.
func (r *PostRepository) AdjustCommentCount(ctx context.Context, id int64, delta int) error {
	return adjustCounter(ctx, r.db, "posts", "comment_count", id, delta)
}

// AdjustLikeCount adds delta to the post's like count.
func (r *PostRepository) AdjustLikeCount(ctx context.Context, id int64, delta int) error {
	return adjustCounter(ctx, r.db, "posts", "like_count", id, delta)
}
