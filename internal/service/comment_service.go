package service

import (
	"context"
	"fmt"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/data"
	"strings"
	"time"
)

// CommentService provides business logic for comments.
type CommentService struct {
	core
}

// NewCommentService creates a new CommentService.
func NewCommentService(d Deps) *CommentService {
	return &CommentService{core: newCore(d)}
}

// CreateComment adds a member's comment to a post and bumps the post's comment count.
func (s *CommentService) CreateComment(ctx context.Context, id auth.Identity, postID int64, text string) (*data.Comment, error) {
	userID, ok := id.UserID()
	if !ok {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("comment is blank: %w", ErrInvalidInput)
	}

	var comment *data.Comment
	err := s.atomic(ctx, "create_comment", func(tx *data.Tx) error {
		if _, err := tx.Posts.GetPostByID(ctx, postID); err != nil {
			return err
		}
		c := &data.Comment{
			PostID:    postID,
			UserID:    userID,
			Body:      text,
			BodyHTML:  s.Renderer.Render(text),
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Comments.CreateComment(ctx, c); err != nil {
			return err
		}
		if err := tx.Posts.AdjustCommentCount(ctx, postID, 1); err != nil {
			return err
		}
		var err error
		comment, err = tx.Comments.GetCommentByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(postKey(postID))
	return comment, nil
}

// DeleteComment removes a comment and its reactions. It returns the id of
// the post the comment belonged to.
func (s *CommentService) DeleteComment(ctx context.Context, id auth.Identity, commentID int64) (int64, error) {
	if !id.IsAuthor() {
		return 0, ErrUnauthorized
	}
	var postID int64
	err := s.atomic(ctx, "delete_comment", func(tx *data.Tx) error {
		c, err := tx.Comments.GetCommentByID(ctx, commentID)
		if err != nil {
			return err
		}
		postID = c.PostID
		if err := tx.Posts.AdjustCommentCount(ctx, c.PostID, -1); err != nil {
			return err
		}
		if err := tx.Reactions.DeleteForComment(ctx, commentID); err != nil {
			return err
		}
		return tx.Comments.DeleteComment(ctx, commentID)
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(postKey(postID))
	return postID, nil
}

// ListComments returns one page of a post's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, postID int64, page int) ([]*data.Comment, error) {
	read := s.Store.Read()
	if _, err := read.Posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	limit, offset := pageOffset(page, s.Config.Blog.CommentsPerPage)
	return read.Comments.ListByPost(ctx, postID, limit, offset)
}
