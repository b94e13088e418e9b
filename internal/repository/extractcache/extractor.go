// Package extractcache caches attribute extraction results in a key-value
// store, so repeated queries skip the completion round-trip.
package extractcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/shoplens/catalog/internal/db/redis"
	domsearch "github.com/shoplens/catalog/internal/domain/search"
)

const cacheKeyPrefix = "catalog:extract_cache:"

// extractor is the inner extraction contract.
type extractor interface {
	Extract(ctx context.Context, query string) (domsearch.Attributes, error)
}

// store is the consumer interface for the extraction cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedExtractor caches extraction results keyed by the query text.
// Cache failures are soft: a broken cache degrades to calling the inner
// extractor, never to an error.
type CachedExtractor struct {
	inner      extractor
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. cacheTotal is a counter vec with label
// "result" ("hit"/"miss"), passed explicitly.
func New(
	inner extractor,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedExtractor {
	return &CachedExtractor{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Extract returns cached attributes or calls the inner extractor. Only
// successful extractions are cached; fallbacks stay uncached so a recovered
// completion API serves fresh results.
func (c *CachedExtractor) Extract(ctx context.Context, query string) (domsearch.Attributes, error) {
	key := c.cacheKey(query)

	if attrs, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return attrs, nil
	}
	c.incCache("miss")

	attrs, err := c.inner.Extract(ctx, query)
	if err != nil {
		return domsearch.Attributes{}, fmt.Errorf("extract attributes: %w", err)
	}

	c.putToCache(ctx, key, attrs)
	return attrs, nil
}

func (c *CachedExtractor) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedExtractor) cacheKey(query string) string {
	h := sha256.Sum256([]byte(query))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedExtractor) getFromCache(ctx context.Context, key string) (domsearch.Attributes, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached extraction", zap.String("key", key), zap.Error(err))
		}
		return domsearch.Attributes{}, false
	}

	var attrs domsearch.Attributes
	if err := json.Unmarshal(data, &attrs); err != nil {
		c.logger.Warn("Failed to parse cached extraction", zap.String("key", key), zap.Error(err))
		return domsearch.Attributes{}, false
	}
	return attrs, true
}

func (c *CachedExtractor) putToCache(ctx context.Context, key string, attrs domsearch.Attributes) {
	data, err := json.Marshal(attrs)
	if err != nil {
		c.logger.Warn("Failed to encode extraction for cache", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache extraction", zap.String("key", key), zap.Error(err))
	}
}
