package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"go-blog-app/internal/config"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const defaultTTL = 10 * time.Minute

// Cache provides a SQLite-based caching mechanism for rendered read models.
type Cache struct {
	db  *sqlx.DB
	ttl time.Duration

	// mu orders invalidations against SetJSONAt; gen counts invalidations.
	mu  sync.Mutex
	gen uint64
}

// New creates a new Cache instance.
// It opens the SQLite database at the configured file path and ensures the
// cache table is created.
func New(cfg config.CacheConfig) (*Cache, error) {
	db, err := sqlx.Connect("sqlite", cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite cache: %w", err)
	}
	// ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		return nil, fmt.Errorf("failed to set WAL mode on sqlite cache: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value BLOB,
		expires_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_expires_at ON cache (expires_at);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// TTL is the lifetime applied by SetJSONAt.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get retrieves an item from the cache. It returns nil if the item is not found or is expired.
func (c *Cache) Get(key string) ([]byte, error) {
	var item struct {
		Value     []byte `db:"value"`
		ExpiresAt int64  `db:"expires_at"`
	}
	query := `SELECT value, expires_at FROM cache WHERE key = ?`
	err := c.db.Get(&item, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item from cache: %w", err)
	}

	if time.Now().UnixNano() > item.ExpiresAt {
		_ = c.Delete(key)
		return nil, nil
	}

	return item.Value, nil
}

// Set adds an item to the cache with a specific TTL (time-to-live).
func (c *Cache) Set(key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).UnixNano()
	query := `INSERT OR REPLACE INTO cache (key, value, expires_at) VALUES (?, ?, ?)`
	_, err := c.db.Exec(query, key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set item in cache: %w", err)
	}
	return nil
}

// GetJSON decodes a cached value into v. It reports false on a miss.
func (c *Cache) GetJSON(key string, v any) (bool, error) {
	raw, err := c.Get(key)
	if err != nil || raw == nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		_ = c.Delete(key)
		return false, fmt.Errorf("failed to decode cached %q: %w", key, err)
	}
	return true, nil
}

// Generation returns the number of invalidations so far. Pass it to
// SetJSONAt to store a value read after this point.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetJSONAt stores v only if nothing was invalidated since gen was taken,
// so a value read before a write cannot outlive that write's invalidation.
// It reports whether v was stored.
func (c *Cache) SetJSONAt(key string, v any, gen uint64) (bool, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("failed to encode %q for cache: %w", key, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false, nil
	}
	return true, c.Set(key, raw, c.ttl)
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	query := `DELETE FROM cache WHERE key = ?`
	_, err := c.db.Exec(query, key)
	if err != nil {
		return fmt.Errorf("failed to delete item from cache: %w", err)
	}
	return nil
}

// DeletePrefix removes every item whose key starts with prefix.
func (c *Cache) DeletePrefix(prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	_, err := c.db.Exec(`DELETE FROM cache WHERE substr(key, 1, ?) = ?`, len(prefix), prefix)
	if err != nil {
		return fmt.Errorf("failed to delete prefix %q from cache: %w", prefix, err)
	}
	return nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
