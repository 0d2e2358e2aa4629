//go:build integration

package service

import (
	"context"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/cache"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/metrics"
	"go-blog-app/internal/render"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// countingRenderer records how often the pipeline ran.
type countingRenderer struct {
	inner *render.Renderer
	calls atomic.Int64
}

func (r *countingRenderer) Render(raw string) string {
	r.calls.Add(1)
	return r.inner.Render(raw)
}

// testEnv is a complete service stack on an in-memory SQLite database.
type testEnv struct {
	db       *sqlx.DB
	store    *data.Store
	renderer *countingRenderer
	cfg      *config.Config
	metrics  *metrics.Metrics

	taxonomy  *TaxonomyService
	posts     *PostService
	comments  *CommentService
	reactions *ReactionService
	users     *UserService

	author auth.Member
}

func testConfig() *config.Config {
	return &config.Config{
		Author: config.AuthorConfig{Username: "Dexter", UserID: 1, Password: "secret"},
		Blog:   config.BlogConfig{PostsPerPage: 8, CommentsPerPage: 15},
		Store:  config.StoreConfig{MaxAttempts: 3},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithSchema(t, func(schema string) string { return schema })
}

// newCaseInsensitiveEnv compares usernames and label names without regard
// to case, the way MySQL's default utf8mb4 collation does.
func newCaseInsensitiveEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithSchema(t, func(schema string) string {
		schema = strings.Replace(schema, "username TEXT NOT NULL UNIQUE", "username TEXT NOT NULL UNIQUE COLLATE NOCASE", 1)
		return strings.Replace(schema, "    name TEXT NOT NULL UNIQUE,", "    name TEXT NOT NULL UNIQUE COLLATE NOCASE,", 1)
	})
}

func newTestEnvWithSchema(t *testing.T, rewrite func(string) string) *testEnv {
	t.Helper()

	db, err := data.NewDB(config.DBConfig{Driver: "sqlite3", DSN: "file::memory:"})
	require.NoError(t, err)
	raw, err := os.ReadFile("../../migrations/sqlite3/000001_init.up.sql")
	require.NoError(t, err)
	schema := rewrite(string(raw))
	db.MustExec(schema)

	c, err := cache.New(config.CacheConfig{FilePath: "file::memory:", TTL: time.Minute})
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		db.Close()
	})

	env := &testEnv{
		db:       db,
		store:    data.NewStore(db),
		renderer: &countingRenderer{inner: render.New()},
		cfg:      testConfig(),
		metrics:  metrics.New(),
	}
	deps := Deps{
		Store:    env.store,
		Renderer: env.renderer,
		Cache:    c,
		Metrics:  env.metrics,
		Log:      logger.Nop(),
		Config:   env.cfg,
	}
	env.taxonomy = NewTaxonomyService(deps)
	env.posts = NewPostService(deps)
	env.comments = NewCommentService(deps)
	env.reactions = NewReactionService(deps)
	env.users = NewUserService(deps)

	ctx := context.Background()
	require.NoError(t, env.users.EnsureAuthor(ctx))
	env.author, err = env.users.Authenticate(ctx, "Dexter", "secret")
	require.NoError(t, err)
	require.True(t, env.author.IsAuthor())
	return env
}

func (e *testEnv) reader(t *testing.T, name string) auth.Member {
	t.Helper()
	m, err := e.users.Register(context.Background(), name, "pw-"+name)
	require.NoError(t, err)
	return m
}

func (e *testEnv) category(t *testing.T, tag string) *data.Category {
	t.Helper()
	c, err := e.taxonomy.EnsureCategory(context.Background(), tag)
	require.NoError(t, err)
	return c
}

func (e *testEnv) publish(t *testing.T, tag, labels string) *data.Post {
	t.Helper()
	p, err := e.posts.CreatePost(context.Background(), e.author, PostInput{
		Title:       "title",
		Body:        "body",
		Summary:     "summary",
		CategoryTag: tag,
		Labels:      ParseLabels(labels),
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) labelCount(t *testing.T, name string) int {
	t.Helper()
	l, err := e.store.Read().Labels.FindByName(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, l, "label %q", name)
	return l.Count
}

func (e *testEnv) categoryCount(t *testing.T, tag string) int {
	t.Helper()
	c, err := e.store.Read().Categories.FindByTag(context.Background(), tag)
	require.NoError(t, err)
	require.NotNil(t, c, "category %q", tag)
	return c.Count
}

// assertConserved checks every category and label count against the live rows.
func (e *testEnv) assertConserved(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	r := e.store.Read()

	categories, err := r.Categories.GetAll(ctx)
	require.NoError(t, err)
	for _, c := range categories {
		n, err := r.Posts.CountByCategory(ctx, c.ID)
		require.NoError(t, err)
		require.Equal(t, n, c.Count, "category %q", c.Tag)
	}
	labels, err := r.Labels.GetAll(ctx)
	require.NoError(t, err)
	for _, l := range labels {
		n, err := r.Posts.CountByLabel(ctx, l.ID)
		require.NoError(t, err)
		require.Equal(t, n, l.Count, "label %q", l.Name)
	}
}
