package handler

import (
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/session"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures a new chi router.
func NewRouter(
	postHandler *PostHandler,
	commentHandler *CommentHandler,
	authHandler *AuthHandler,
	seoHandler *SeoHandler,
	authzMiddleware func(http.Handler) http.Handler,
	errorMiddleware func(middleware.AppHandler) http.Handler,
	sessionManager session.Manager,
	metricsHandler http.Handler,
) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	// Public, sessionless routes
	r.Get("/robots.txt", seoHandler.robotsHandler)
	r.Get("/sitemap.xml", seoHandler.sitemapHandler)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(authzMiddleware)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/posts", http.StatusFound)
		})

		// Authentication
		r.Method("POST", "/auth/login", errorMiddleware(authHandler.handleLogin))
		r.Method("POST", "/auth/register", errorMiddleware(authHandler.handleRegister))
		r.Method("POST", "/auth/logout", errorMiddleware(authHandler.handleLogout))
		r.Method("GET", "/auth/oidc/login", errorMiddleware(authHandler.handleOIDCLogin))
		r.Method("GET", "/auth/oidc/callback", errorMiddleware(authHandler.handleOIDCCallback))

		// Posts and taxonomy
		r.Method("GET", "/posts", errorMiddleware(postHandler.listHandler))
		r.Method("POST", "/posts", errorMiddleware(postHandler.createHandler))
		r.Method("GET", "/posts/{id}", errorMiddleware(postHandler.viewHandler))
		r.Method("PUT", "/posts/{id}", errorMiddleware(postHandler.editHandler))
		r.Method("DELETE", "/posts/{id}", errorMiddleware(postHandler.deleteHandler))
		r.Method("GET", "/categories", errorMiddleware(postHandler.categoriesHandler))
		r.Method("GET", "/categories/{tag}/posts", errorMiddleware(postHandler.categoryPostsHandler))
		r.Method("GET", "/labels", errorMiddleware(postHandler.labelsHandler))
		r.Method("GET", "/labels/{name}/posts", errorMiddleware(postHandler.labelPostsHandler))

		// Comments and reactions
		reactions := commentHandler.reactions
		r.Method("POST", "/posts/{id}/comments", errorMiddleware(commentHandler.createHandler))
		r.Method("DELETE", "/comments/{id}", errorMiddleware(commentHandler.deleteHandler))
		r.Method("POST", "/posts/{id}/like", errorMiddleware(react(reactions.LikePost, "likes")))
		r.Method("DELETE", "/posts/{id}/like", errorMiddleware(react(reactions.UnlikePost, "likes")))
		r.Method("POST", "/comments/{id}/like", errorMiddleware(react(reactions.LikeComment, "likes")))
		r.Method("DELETE", "/comments/{id}/like", errorMiddleware(react(reactions.UnlikeComment, "likes")))
		r.Method("POST", "/comments/{id}/dislike", errorMiddleware(react(reactions.DislikeComment, "dislikes")))
		r.Method("DELETE", "/comments/{id}/dislike", errorMiddleware(react(reactions.UndislikeComment, "dislikes")))
	})

	return r
}
