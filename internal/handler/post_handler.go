package handler

import (
	"go-blog-app/internal/logger"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"net/http"
)

// PostHandler holds the dependencies for the post and taxonomy handlers.
type PostHandler struct {
	posts     *service.PostService
	comments  *service.CommentService
	reactions *service.ReactionService
	taxonomy  *service.TaxonomyService
	log       logger.Logger
}

// NewPostHandler creates a new PostHandler with the given dependencies.
func NewPostHandler(ps *service.PostService, cs *service.CommentService, rs *service.ReactionService, ts *service.TaxonomyService, log logger.Logger) *PostHandler {
	return &PostHandler{
		posts:     ps,
		comments:  cs,
		reactions: rs,
		taxonomy:  ts,
		log:       log,
	}
}

// listHandler returns one page of posts, newest first.
func (h *PostHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page := pageParam(r)
	posts, err := h.posts.ListPosts(r.Context(), page)
	if err != nil {
		return middleware.FromService(err)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"page":  page,
		"posts": newPosts(posts),
	})
	return nil
}

// viewHandler returns a post with one page of its comments.
func (h *PostHandler) viewHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := idParam(r, "id")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Post not found", Code: http.StatusNotFound}
	}
	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		return middleware.FromService(err)
	}
	page := pageParam(r)
	comments, err := h.comments.ListComments(r.Context(), id, page)
	if err != nil {
		return middleware.FromService(err)
	}
	liked, err := h.reactions.HasLikedPost(r.Context(), middleware.GetIdentity(r.Context()), id)
	if err != nil {
		return middleware.FromService(err)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"post":     newPost(post, true),
		"comments": newComments(comments),
		"page":     page,
		"liked":    liked,
	})
	return nil
}

// createHandler publishes a new post.
func (h *PostHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	form := parsePostForm(r)
	if err := validateForm(form); err != nil {
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusBadRequest}
	}
	post, err := h.posts.CreatePost(r.Context(), middleware.GetIdentity(r.Context()), service.PostInput{
		Title:       form.Title,
		Body:        form.Body,
		Summary:     form.Summary,
		CategoryTag: form.Category,
		Labels:      form.LabelNames,
	})
	if err != nil {
		return middleware.FromService(err)
	}
	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{"post": newPost(post, true)})
	return nil
}

// editHandler updates an existing post.
func (h *PostHandler) editHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := idParam(r, "id")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Post not found", Code: http.StatusNotFound}
	}
	form := parseEditForm(r)
	if err := validateForm(form); err != nil {
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusBadRequest}
	}
	post, err := h.posts.EditPost(r.Context(), middleware.GetIdentity(r.Context()), id, service.PostEdit{
		Title:   form.Title,
		Body:    form.Body,
		Summary: form.Summary,
		Labels:  form.LabelNames,
	})
	if err != nil {
		return middleware.FromService(err)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"post": newPost(post, true)})
	return nil
}

// deleteHandler removes a post and everything hanging off it.
func (h *PostHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := idParam(r, "id")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Post not found", Code: http.StatusNotFound}
	}
	if err := h.posts.DeletePost(r.Context(), middleware.GetIdentity(r.Context()), id); err != nil {
		return middleware.FromService(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// categoriesHandler lists every category with its post count.
func (h *PostHandler) categoriesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	categories, err := h.taxonomy.Categories(r.Context())
	if err != nil {
		return middleware.FromService(err)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": newCategories(categories)})
	return nil
}

// categoryPostsHandler returns one page of a category's posts.
func (h *PostHandler) categoryPostsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page := pageParam(r)
	posts, err := h.posts.ListByCategory(r.Context(), textParam(r, "tag"), page)
	if err != nil {
		return middleware.FromService(err)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"page":  page,
		"posts": newPosts(posts),
	})
	return nil
}

// labelsHandler lists every label with its post count.
func (h *PostHandler) labelsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	labels, err := h.taxonomy.Labels(r.Context())
	if err != nil {
		return middleware.FromService(err)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"labels": newLabels(labels)})
	return nil
}

// labelPostsHandler returns one page of the posts carrying a label.
func (h *PostHandler) labelPostsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page := pageParam(r)
	posts, err := h.posts.ListByLabel(r.Context(), textParam(r, "name"), page)
	if err != nil {
		return middleware.FromService(err)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"page":  page,
		"posts": newPosts(posts),
	})
	return nil
}
