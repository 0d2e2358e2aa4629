//go:build integration

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/metrics"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/render"
	"go-blog-app/internal/service"
	"go-blog-app/internal/session"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupIntegrationTest initializes a full application stack for testing.
func setupIntegrationTest(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := data.NewDB(config.DBConfig{Driver: "sqlite3", DSN: "file::memory:"})
	require.NoError(t, err)
	schema, err := os.ReadFile("../../migrations/sqlite3/000001_init.up.sql")
	require.NoError(t, err)
	db.MustExec(string(schema))

	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "http://blog.test"},
		Author: config.AuthorConfig{Username: "Dexter", UserID: 1, Password: "secret"},
		Blog:   config.BlogConfig{Categories: []string{"前端", "后台"}, PostsPerPage: 8, CommentsPerPage: 15},
		Store:  config.StoreConfig{MaxAttempts: 3},
	}
	log := logger.Nop()
	m := metrics.New()
	deps := service.Deps{Store: data.NewStore(db), Renderer: render.New(), Metrics: m, Log: log, Config: cfg}
	taxonomy := service.NewTaxonomyService(deps)
	posts := service.NewPostService(deps)
	comments := service.NewCommentService(deps)
	reactions := service.NewReactionService(deps)
	users := service.NewUserService(deps)

	ctx := context.Background()
	require.NoError(t, users.EnsureAuthor(ctx))
	require.NoError(t, taxonomy.SeedCategories(ctx, cfg.Blog.Categories))

	sessionManager, err := session.New(db.DB, "sqlite3", config.SessionConfig{Lifetime: 1}, false)
	require.NoError(t, err)

	enforcer, err := auth.NewMemoryEnforcer("../../auth_model.conf")
	require.NoError(t, err)
	auth.SeedDefaultPolicies(enforcer, log)

	router := NewRouter(
		NewPostHandler(posts, comments, reactions, taxonomy, log),
		NewCommentHandler(comments, reactions),
		NewAuthHandler(nil, sessionManager, users, log),
		NewSeoHandler(posts, cfg.Server.BaseURL),
		middleware.Authorizer(enforcer, sessionManager, users, log),
		middleware.Error(log),
		sessionManager,
		m.Handler(),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})
	return srv
}

// client is a browser-like HTTP client with its own cookie jar.
type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: srv.URL, http: &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (c *client) do(method, path string, form url.Values) (int, map[string]interface{}) {
	c.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, c.base+path, body)
	require.NoError(c.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (c *client) text(path string) (int, string) {
	c.t.Helper()
	resp, err := c.http.Get(c.base + path)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, string(raw)
}

func TestHandlers_Integration(t *testing.T) {
	srv := setupIntegrationTest(t)
	anon := newClient(t, srv)
	reader := newClient(t, srv)
	author := newClient(t, srv)

	postForm := url.Values{
		"title":    {"Hello"},
		"body":     {"# Hi\n\nvisit https://example.com"},
		"summary":  {"short"},
		"category": {"前端"},
		"labels":   {"HTML5, JavaScript,"},
	}

	t.Run("anonymous can browse but not publish", func(t *testing.T) {
		code, body := anon.do("GET", "/posts", nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Empty(t, body["posts"])

		code, _ = anon.do("POST", "/posts", postForm)
		assert.Equal(t, http.StatusUnauthorized, code)

		code, _ = anon.do("GET", "/", nil)
		assert.Equal(t, http.StatusFound, code)
	})

	t.Run("readers register but cannot publish", func(t *testing.T) {
		code, body := reader.do("POST", "/auth/register", url.Values{"username": {"alice"}, "password": {"pw"}})
		require.Equal(t, http.StatusCreated, code)
		user := body["user"].(map[string]interface{})
		assert.Equal(t, auth.RoleReader, user["role"])

		code, _ = reader.do("POST", "/posts", postForm)
		assert.Equal(t, http.StatusForbidden, code)

		code, _ = anon.do("POST", "/auth/register", url.Values{"username": {"alice"}, "password": {"x"}})
		assert.Equal(t, http.StatusConflict, code)
	})

	var postID int64
	t.Run("author publishes", func(t *testing.T) {
		code, _ := author.do("POST", "/auth/login", url.Values{"username": {"Dexter"}, "password": {"wrong"}})
		require.Equal(t, http.StatusUnauthorized, code)
		code, body := author.do("POST", "/auth/login", url.Values{"username": {"Dexter"}, "password": {"secret"}})
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, auth.RoleAuthor, body["user"].(map[string]interface{})["role"])

		bad := url.Values{"title": {"x"}, "category": {"前端"}}
		code, body = author.do("POST", "/posts", bad)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body["error"], "body is required")

		code, body = author.do("POST", "/posts", postForm)
		require.Equal(t, http.StatusCreated, code)
		post := body["post"].(map[string]interface{})
		postID = int64(post["id"].(float64))
		assert.Contains(t, post["body_html"], "<h1>Hi</h1>")
		assert.Contains(t, post["body_html"], `<a href="https://example.com" rel="nofollow">`)
		assert.Len(t, post["labels"], 2)
	})

	t.Run("readers comment and like", func(t *testing.T) {
		path := fmt.Sprintf("/posts/%d/like", postID)
		code, body := reader.do("POST", path, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 1.0, body["likes"])

		code, _ = reader.do("POST", path, nil)
		assert.Equal(t, http.StatusConflict, code)
		code, _ = anon.do("POST", path, nil)
		assert.Equal(t, http.StatusUnauthorized, code)

		code, body = reader.do("POST", fmt.Sprintf("/posts/%d/comments", postID), url.Values{"comment": {"**great**"}})
		require.Equal(t, http.StatusCreated, code)
		comment := body["comment"].(map[string]interface{})
		assert.Equal(t, "alice", comment["username"])
		commentID := int64(comment["id"].(float64))

		code, body = reader.do("POST", fmt.Sprintf("/comments/%d/dislike", commentID), nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 1.0, body["dislikes"])

		code, body = reader.do("GET", fmt.Sprintf("/posts/%d", postID), nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["liked"])
		post := body["post"].(map[string]interface{})
		assert.Equal(t, 1.0, post["comment_count"])
		assert.Equal(t, 1.0, post["like_count"])
		assert.Len(t, body["comments"], 1)

		code, body = anon.do("GET", fmt.Sprintf("/posts/%d", postID), nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, false, body["liked"])

		code, _ = reader.do("DELETE", fmt.Sprintf("/comments/%d", commentID), nil)
		assert.Equal(t, http.StatusForbidden, code)
		code, body = author.do("DELETE", fmt.Sprintf("/comments/%d", commentID), nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, float64(postID), body["post_id"])

		code, body = reader.do("DELETE", path, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 0.0, body["likes"])
	})

	t.Run("taxonomy listings", func(t *testing.T) {
		code, body := anon.do("GET", "/categories", nil)
		require.Equal(t, http.StatusOK, code)
		categories := body["categories"].([]interface{})
		require.Len(t, categories, 2)
		assert.Equal(t, 1.0, categories[0].(map[string]interface{})["count"])

		code, body = anon.do("GET", "/categories/"+url.PathEscape("前端")+"/posts", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, body["posts"], 1)

		code, body = anon.do("GET", "/labels/HTML5/posts", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, body["posts"], 1)

		code, _ = anon.do("GET", "/labels/nothing/posts", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("author edits", func(t *testing.T) {
		edit := url.Values{"title": {"Hello again"}, "body": {"new"}, "summary": {"short"}, "labels": {"JavaScript,Go"}}
		code, body := author.do("PUT", fmt.Sprintf("/posts/%d", postID), edit)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Hello again", body["post"].(map[string]interface{})["title"])

		code, body = anon.do("GET", "/labels", nil)
		require.Equal(t, http.StatusOK, code)
		counts := map[string]float64{}
		for _, l := range body["labels"].([]interface{}) {
			label := l.(map[string]interface{})
			counts[label["name"].(string)] = label["count"].(float64)
		}
		assert.Equal(t, map[string]float64{"HTML5": 0, "JavaScript": 1, "Go": 1}, counts)
	})

	t.Run("seo", func(t *testing.T) {
		code, robots := anon.text("/robots.txt")
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, robots, "Sitemap: http://blog.test/sitemap.xml")

		code, sitemap := anon.text("/sitemap.xml")
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, sitemap, fmt.Sprintf("<loc>http://blog.test/posts/%d</loc>", postID))
	})

	t.Run("author deletes", func(t *testing.T) {
		code, _ := reader.do("DELETE", fmt.Sprintf("/posts/%d", postID), nil)
		assert.Equal(t, http.StatusForbidden, code)

		code, _ = author.do("DELETE", fmt.Sprintf("/posts/%d", postID), nil)
		assert.Equal(t, http.StatusNoContent, code)

		code, _ = anon.do("GET", fmt.Sprintf("/posts/%d", postID), nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("logout drops privileges", func(t *testing.T) {
		code, _ := reader.do("POST", "/auth/logout", nil)
		assert.Equal(t, http.StatusNoContent, code)
		code, _ = reader.do("POST", fmt.Sprintf("/posts/%d/like", postID), nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("metrics", func(t *testing.T) {
		code, out := anon.text("/metrics")
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, out, `blog_mutations_total{op="create_post",outcome="success"} 1`)
	})
}
