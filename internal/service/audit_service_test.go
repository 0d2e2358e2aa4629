//go:build integration

package service

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_CheckCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	audit := NewAuditService(Deps{Store: env.store, Metrics: env.metrics, Config: env.cfg})

	env.category(t, "前端")
	post := env.publish(t, "前端", "Go,HTML5")
	alice := env.reader(t, "alice")
	comment, err := env.comments.CreateComment(ctx, alice, post.ID, "hi")
	require.NoError(t, err)
	_, err = env.reactions.LikePost(ctx, alice, post.ID)
	require.NoError(t, err)
	_, err = env.reactions.DislikeComment(ctx, alice, comment.ID)
	require.NoError(t, err)

	drifts, err := audit.CheckCounters(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts, "counters kept by the services agree with the rows")

	env.db.MustExec(`UPDATE labels SET post_count = 5 WHERE name = 'Go'`)
	env.db.MustExec(`UPDATE comments SET dislike_count = 0 WHERE id = ?`, comment.ID)

	drifts, err = audit.CheckCounters(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 2)
	assert.Contains(t, drifts, CounterDrift{Table: "labels", ID: post.Labels[0].ID, Counter: "post_count", Stored: 5, Actual: 1})
	assert.Contains(t, drifts, CounterDrift{Table: "comments", ID: comment.ID, Counter: "dislike_count", Stored: 0, Actual: 1})

	rr := httptest.NewRecorder()
	env.metrics.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `blog_consistency_violations_total{op="audit_counters"} 2`)
}
