package main

import (
	"context"
	"errors"
	"fmt"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/cache"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
	"go-blog-app/internal/handler"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/metrics"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/render"
	"go-blog-app/internal/service"
	"go-blog-app/internal/session"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, nil)

	// --- Pre-flight Checks ---
	if cfg.Session.SecretKey == "" || cfg.Session.SecretKey == "CHANGE_ME_IN_PRODUCTION_SECRET!!" {
		log.Fatal(errors.New("session secret key not set"), "Please set a secure BLOG_SESSION_SECRET_KEY environment variable.")
	}

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager, err := session.New(db.DB, cfg.DB.Driver, cfg.Session, cfg.Server.TLS.Enabled)
	if err != nil {
		log.Fatal(err, "Failed to initialize sessions")
	}

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	var authenticator *auth.Authenticator
	if cfg.OIDC.IssuerURL != "" {
		authenticator, err = auth.NewAuthenticator(context.Background(), &cfg.OIDC)
		if err != nil {
			log.Fatal(err, "Failed to initialize authenticator")
		}
	} else {
		log.Info("OIDC issuer not configured; external login disabled")
	}
	enforcer, err := auth.NewEnforcer(cfg.DB.Driver, cfg.DB.DSN, "auth_model.conf")
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	log.Info("Auth components initialized and policies seeded.")

	// --- Cache Initialization ---
	log.Info("Initializing SQLite cache...")
	readCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer readCache.Close()
	log.Info("Cache initialized.")

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	m := metrics.New()
	deps := service.Deps{
		Store:    data.NewStore(db),
		Renderer: render.New(),
		Cache:    readCache,
		Metrics:  m,
		Log:      log,
		Config:   cfg,
	}
	taxonomyService := service.NewTaxonomyService(deps)
	postService := service.NewPostService(deps)
	commentService := service.NewCommentService(deps)
	reactionService := service.NewReactionService(deps)
	userService := service.NewUserService(deps)

	ctx := context.Background()
	if err := userService.EnsureAuthor(ctx); err != nil {
		log.Fatal(err, "Failed to provision the author account")
	}
	if err := taxonomyService.SeedCategories(ctx, cfg.Blog.Categories); err != nil {
		log.Fatal(err, "Failed to seed categories")
	}
	if drifts, err := service.NewAuditService(deps).CheckCounters(ctx); err != nil {
		log.Error(err, "Counter audit failed")
	} else if len(drifts) > 0 {
		log.Warn(fmt.Sprintf("Counter audit found %d drifted counters", len(drifts)))
	}

	postHandler := handler.NewPostHandler(postService, commentService, reactionService, taxonomyService, log)
	commentHandler := handler.NewCommentHandler(commentService, reactionService)
	authHandler := handler.NewAuthHandler(authenticator, sessionManager, userService, log)
	seoHandler := handler.NewSeoHandler(postService, cfg.Server.BaseURL)

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager, userService, log)
	errorMiddleware := middleware.Error(log)

	// --- Router Setup ---
	router := handler.NewRouter(postHandler, commentHandler, authHandler, seoHandler, authzMiddleware, errorMiddleware, sessionManager, m.Handler())

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}
