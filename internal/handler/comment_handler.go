package handler

import (
	"context"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"net/http"
	"strings"
)

// CommentHandler holds the dependencies for comment and reaction handlers.
type CommentHandler struct {
	comments  *service.CommentService
	reactions *service.ReactionService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(cs *service.CommentService, rs *service.ReactionService) *CommentHandler {
	return &CommentHandler{comments: cs, reactions: rs}
}

// createHandler adds the caller's comment to a post.
func (h *CommentHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	postID, err := idParam(r, "id")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Post not found", Code: http.StatusNotFound}
	}
	form := commentForm{Comment: strings.TrimSpace(r.FormValue("comment"))}
	if err := validateForm(form); err != nil {
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusBadRequest}
	}
	comment, err := h.comments.CreateComment(r.Context(), middleware.GetIdentity(r.Context()), postID, form.Comment)
	if err != nil {
		return middleware.FromService(err)
	}
	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{"comment": newComment(comment)})
	return nil
}

// deleteHandler removes a comment and reports the post it belonged to.
func (h *CommentHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := idParam(r, "id")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Comment not found", Code: http.StatusNotFound}
	}
	postID, err := h.comments.DeleteComment(r.Context(), middleware.GetIdentity(r.Context()), id)
	if err != nil {
		return middleware.FromService(err)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"post_id": postID})
	return nil
}

type reactFunc func(ctx context.Context, id auth.Identity, targetID int64) (int, error)

// react adapts one reaction operation into a handler that answers with the
// target's new counter under field.
func react(fn reactFunc, field string) middleware.AppHandler {
	return func(w http.ResponseWriter, r *http.Request) *middleware.AppError {
		id, err := idParam(r, "id")
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Not found", Code: http.StatusNotFound}
		}
		n, err := fn(r.Context(), middleware.GetIdentity(r.Context()), id)
		if err != nil {
			return middleware.FromService(err)
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]int{field: n})
		return nil
	}
}
