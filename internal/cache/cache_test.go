//go:build unit

package cache

import (
	"go-blog-app/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := New(config.CacheConfig{FilePath: ":memory:", TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := newTestCache(t, 0)
	assert.Equal(t, defaultTTL, c.TTL())

	v, err := c.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.Set("k", []byte("v"), time.Minute))
	v, err = c.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestCache_Expiry(t *testing.T) {
	c := newTestCache(t, time.Minute)
	require.NoError(t, c.Set("k", []byte("v"), -time.Second))

	v, err := c.Get("k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCache_JSON(t *testing.T) {
	c := newTestCache(t, time.Minute)
	type item struct {
		Name  string
		Count int
	}

	var got item
	hit, err := c.GetJSON("item", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	stored, err := c.SetJSONAt("item", item{Name: "HTML5", Count: 4}, c.Generation())
	require.NoError(t, err)
	require.True(t, stored)
	hit, err = c.GetJSON("item", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, item{Name: "HTML5", Count: 4}, got)

	require.NoError(t, c.Set("broken", []byte("{"), time.Minute))
	hit, err = c.GetJSON("broken", &got)
	assert.Error(t, err)
	assert.False(t, hit)
	v, err := c.Get("broken")
	require.NoError(t, err)
	assert.Nil(t, v, "undecodable entries are dropped")
}

func TestCache_DeletePrefix(t *testing.T) {
	c := newTestCache(t, time.Minute)
	for _, k := range []string{"post:1", "post:2", "taxonomy:labels"} {
		require.NoError(t, c.Set(k, []byte(k), time.Minute))
	}

	require.NoError(t, c.DeletePrefix("post:"))

	for _, k := range []string{"post:1", "post:2"} {
		v, err := c.Get(k)
		require.NoError(t, err)
		assert.Nil(t, v, k)
	}
	v, err := c.Get("taxonomy:labels")
	require.NoError(t, err)
	assert.Equal(t, []byte("taxonomy:labels"), v)

	require.NoError(t, c.Delete("taxonomy:labels"))
	v, err = c.Get("taxonomy:labels")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCache_SetJSONAtSkipsAfterInvalidation(t *testing.T) {
	c := newTestCache(t, time.Minute)

	// A reader takes the generation, then a writer invalidates before the
	// reader stores what it read.
	gen := c.Generation()
	require.NoError(t, c.DeletePrefix("post:"))

	stored, err := c.SetJSONAt("post:1", "stale", gen)
	require.NoError(t, err)
	assert.False(t, stored)
	var got string
	hit, err := c.GetJSON("post:1", &got)
	require.NoError(t, err)
	assert.False(t, hit, "a value read before the invalidation is not cached")

	stored, err = c.SetJSONAt("post:1", "fresh", c.Generation())
	require.NoError(t, err)
	assert.True(t, stored)
	hit, err = c.GetJSON("post:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "fresh", got)

	gen = c.Generation()
	require.NoError(t, c.Delete("post:2"))
	stored, err = c.SetJSONAt("post:1", "stale", gen)
	require.NoError(t, err)
	assert.False(t, stored, "any invalidation retires older reads")
}
