package service

import (
	"context"
	"errors"
	"fmt"
	"go-blog-app/internal/cache"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/metrics"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Store is the transactional record store the services write through.
// *data.Store satisfies it.
type Store interface {
	WithTx(ctx context.Context, fn func(tx *data.Tx) error) error
	Read() *data.Tx
}

// Renderer turns raw markdown into sanitized HTML.
type Renderer interface {
	Render(raw string) string
}

// Deps are the collaborators shared by every service. Cache may be nil.
type Deps struct {
	Store    Store
	Renderer Renderer
	Cache    *cache.Cache
	Metrics  *metrics.Metrics
	Log      logger.Logger
	Config   *config.Config
}

// core runs atomic units and keeps the read cache coherent for a service.
type core struct {
	Deps
}

func newCore(d Deps) core {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Config == nil {
		d.Config = &config.Config{}
	}
	return core{Deps: d}
}

// atomic runs fn as one transaction. Transient store conflicts retry the
// whole unit up to store.max_attempts times; every other error is final.
func (c core) atomic(ctx context.Context, op string, fn func(tx *data.Tx) error) error {
	attempts := c.Config.Store.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxInterval = 500 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.Store.WithTx(ctx, fn)
		if err == nil || errors.Is(err, data.ErrConflict) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(attempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.Metrics.Retry(op)
			c.Log.With(map[string]interface{}{"op": op, "wait": wait.String()}).Warn(fmt.Sprintf("retrying after store conflict: %v", err))
		}),
	)

	err = c.translate(op, err)
	if err != nil {
		c.Metrics.Mutation(op, metrics.OutcomeFailure)
		return err
	}
	c.Metrics.Mutation(op, metrics.OutcomeSuccess)
	c.Log.Debug(fmt.Sprintf("%s committed", op))
	return nil
}

// translate maps store sentinels onto the service error taxonomy.
func (c core) translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, data.ErrNegativeCounter):
		c.Metrics.Violation(op)
		c.Log.With(map[string]interface{}{"op": op}).Error(err, "counter invariant violated, transaction rolled back")
		return fmt.Errorf("%w: %w", ErrConsistencyViolation, err)
	case errors.Is(err, data.ErrConflict):
		return fmt.Errorf("%w: %w", ErrStoreConflict, err)
	}
	return err
}

// conflict turns a lost insert race into a retryable error so the next
// attempt starts from a fresh lookup.
func conflict(err error) error {
	if errors.Is(err, data.ErrDuplicate) {
		return errors.Join(data.ErrConflict, err)
	}
	return err
}

func (c core) invalidate(keys ...string) {
	if c.Cache == nil {
		return
	}
	for _, k := range keys {
		if err := c.Cache.Delete(k); err != nil {
			c.Log.Warn(fmt.Sprintf("failed to invalidate cache key %q: %v", k, err))
		}
	}
}

func (c core) invalidatePrefix(prefixes ...string) {
	if c.Cache == nil {
		return
	}
	for _, p := range prefixes {
		if err := c.Cache.DeletePrefix(p); err != nil {
			c.Log.Warn(fmt.Sprintf("failed to invalidate cache prefix %q: %v", p, err))
		}
	}
}

func (c core) cached(key string, v any) bool {
	if c.Cache == nil {
		return false
	}
	hit, err := c.Cache.GetJSON(key, v)
	if err != nil {
		c.Log.Warn(fmt.Sprintf("cache read failed for %q: %v", key, err))
		return false
	}
	return hit
}

// generation marks the start of a read whose result may be remembered.
func (c core) generation() uint64 {
	if c.Cache == nil {
		return 0
	}
	return c.Cache.Generation()
}

// remember caches v unless an invalidation ran since gen was taken.
func (c core) remember(key string, v any, gen uint64) {
	if c.Cache == nil {
		return
	}
	if _, err := c.Cache.SetJSONAt(key, v, gen); err != nil {
		c.Log.Warn(fmt.Sprintf("cache write failed for %q: %v", key, err))
	}
}

// Cache keys.
const (
	keyCategories = "taxonomy:categories"
	keyLabels     = "taxonomy:labels"
	prefixPost    = "post:"
	prefixTaxon   = "taxonomy:"
)

func postKey(id int64) string { return fmt.Sprintf("%s%d", prefixPost, id) }

func pageOffset(page, perPage int) (limit, offset int) {
	if perPage <= 0 {
		perPage = 10
	}
	if page < 1 {
		page = 1
	}
	return perPage, (page - 1) * perPage
}
