package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"currency-viewer/internal/domain/model"
	"currency-viewer/internal/metrics"
	"currency-viewer/pkg/logger"
)

// MemoryCache bounds the proxy's results by count and age. Entries past their TTL are never
// returned; the least recently used entry is dropped once capacity is reached.
type MemoryCache struct {
	entries *expirable.LRU[string, *model.CacheEntry]
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewMemoryCache(capacity int, cacheTTL time.Duration, log *logger.Logger, m *metrics.Metrics) *MemoryCache {
	c := &MemoryCache{
		log:     log,
		metrics: m,
		now:     time.Now,
	}
	c.entries = expirable.NewLRU[string, *model.CacheEntry](capacity, c.onEvict, cacheTTL)
	return c
}

func (c *MemoryCache) onEvict(key string, _ *model.CacheEntry) {
	c.metrics.CacheEvictionsTotal.Inc()
	c.log.Debug("Cache entry evicted", "key", key)
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*model.CacheEntry, bool) {
	entry, found := c.entries.Get(key)
	if !found {
		c.metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		c.log.Debug("Cache miss", "key", key)
		return nil, false
	}

	c.metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
	c.log.Debug("Cache hit", "key", key, "age", c.now().Sub(entry.StoredAt))
	return entry, true
}

// Set replaces any entry under key. Concurrent writers to one key race; the last one wins.
func (c *MemoryCache) Set(ctx context.Context, key string, result *model.Result) {
	c.entries.Add(key, &model.CacheEntry{
		Result:   result,
		StoredAt: c.now(),
	})
	c.log.Debug("Cache set", "key", key)
}

func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

func (c *MemoryCache) Purge() {
	c.entries.Purge()
	c.log.Info("Cache purged")
}
