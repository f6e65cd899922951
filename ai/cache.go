package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
)

// CachingEmbedder memoizes EmbedText results in memory. Repeated queries
// skip the embedding service until the entry expires.
type CachingEmbedder struct {
	inner      Embedder
	cache      *gocache.Cache
	cacheTotal *prometheus.CounterVec
	logger     *slog.Logger
}

var _ Embedder = (*CachingEmbedder)(nil)

// CacheOption configures a CachingEmbedder.
type CacheOption func(*CachingEmbedder)

// WithCacheCounter counts hits and misses on a vec with label "result".
func WithCacheCounter(cacheTotal *prometheus.CounterVec) CacheOption {
	return func(c *CachingEmbedder) {
		c.cacheTotal = cacheTotal
	}
}

// WithCacheLogger sets a custom logger.
// Default is slog.Default().
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachingEmbedder) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCachingEmbedder wraps inner with a cache whose entries live for ttl.
func NewCachingEmbedder(inner Embedder, ttl time.Duration, opts ...CacheOption) *CachingEmbedder {
	c := &CachingEmbedder{
		inner:  inner,
		cache:  gocache.New(ttl, 2*ttl),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "embedding-cache")
	return c
}

// EmbedText returns a cached embedding or calls the inner embedder.
// Callers receive a copy and may modify it.
func (c *CachingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if v, ok := c.cache.Get(key); ok {
		c.incCache("hit")
		return slices.Clone(v.([]float32)), nil
	}
	c.incCache("miss")

	vec, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) > 0 {
		c.cache.SetDefault(key, slices.Clone(vec))
	}
	return vec, nil
}

// EmbedTexts passes batches through uncached. Batches come from ingestion
// and re-embedding, where texts rarely repeat.
func (c *CachingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedTexts(ctx, texts)
}

// Len reports the number of cached embeddings, including expired entries
// not yet cleaned up.
func (c *CachingEmbedder) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every cached embedding.
func (c *CachingEmbedder) Flush() {
	c.logger.Debug("flushing embedding cache", "entries", c.cache.ItemCount())
	c.cache.Flush()
}

func (c *CachingEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
