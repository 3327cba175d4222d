package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/scoring/executor"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/redis"
)

const keyPrefix = "score:"

// Store is the key-value backend; *pkgredis.Client satisfies it. Get must
// return pkgredis.ErrNotFound for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// ResultCache memoizes executor results in a Store. Keys cover the request
// and the executor variant, so caches over one store with different
// stemmers never share entries.
type ResultCache struct {
	store   Store
	variant string
	ttl     time.Duration
	metrics *metrics.Metrics
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a cache over store for results produced under variant (see
// executor.Executor.Variant). m may be nil.
func New(store Store, ttl time.Duration, variant string, m *metrics.Metrics) *ResultCache {
	return &ResultCache{
		store:   store,
		variant: variant,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "score-cache"),
	}
}

// Get looks up req. Store and decode failures are logged and reported as
// misses.
func (c *ResultCache) Get(ctx context.Context, req executor.Request) (*executor.Result, bool) {
	key := BuildKey(c.variant, req)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, pkgredis.ErrNotFound) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result executor.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hit()
	c.logger.Debug("cache hit", "key", key)
	return &result, true
}

// Set stores result for req with the cache TTL. Failures are logged only.
func (c *ResultCache) Set(ctx context.Context, req executor.Request, result *executor.Result) {
	key := BuildKey(c.variant, req)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns a cached result or computes, stores and returns a
// fresh one. Concurrent misses for the same request share one computation.
// The boolean reports a cache hit.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	req executor.Request,
	computeFn func() (*executor.Result, error),
) (*executor.Result, bool, error) {
	if result, ok := c.Get(ctx, req); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(BuildKey(c.variant, req), func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, req, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.Result), false, nil
}

// Invalidate deletes every cached score, whatever its variant.
func (c *ResultCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

// Stats returns the hit and miss counts since construction.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ResultCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *ResultCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// BuildKey hashes variant and every request field that influences the
// result.
func BuildKey(variant string, req executor.Request) string {
	raw, _ := json.Marshal(struct {
		Variant       string   `json:"v"`
		Paragraphs    []string `json:"p"`
		QueryIndex    int      `json:"q"`
		Limit         int      `json:"l"`
		Ranked        bool     `json:"r"`
		IncludeTokens bool     `json:"t"`
	}{variant, req.Paragraphs, req.QueryIndex, req.Limit, req.Ranked, req.IncludeTokens})
	hash := sha256.Sum256(raw)
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
