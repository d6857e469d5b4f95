package client

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"
)

// QueryCache keeps raw response bodies keyed by query key. Concurrent loads of
// the same key share one request.
type QueryCache struct {
	store       *ristretto.Cache
	singleGroup singleflight.Group
	ttl         time.Duration
	loadTimeout time.Duration

	mu          sync.Mutex
	generations map[string]uint64
}

// CacheConfig holds configuration for the query cache
type CacheConfig struct {
	// MaxCost is the maximum total size of cached bodies in bytes
	MaxCost int64
	// NumCounters is the number of frequency counters
	NumCounters int64
	// TTL bounds how long a body is served without refetching
	TTL time.Duration
	// LoadTimeout bounds a shared load once its callers have gone away
	LoadTimeout time.Duration
}

// DefaultCacheConfig returns a default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		MaxCost:     32 << 20,
		NumCounters: 1e5,
		TTL:         5 * time.Minute,
		LoadTimeout: 30 * time.Second,
	}
}

// NewQueryCache creates a new QueryCache
func NewQueryCache(config *CacheConfig) (*QueryCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &QueryCache{
		store:       store,
		ttl:         config.TTL,
		loadTimeout: config.LoadTimeout,
		generations: make(map[string]uint64),
	}, nil
}

// Get returns the cached body for key.
func (c *QueryCache) Get(key string) ([]byte, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	body, ok := v.([]byte)
	return body, ok
}

// Set stores body under key and waits until it is visible to readers.
func (c *QueryCache) Set(key string, body []byte) {
	c.store.SetWithTTL(key, body, int64(len(body))+1, c.ttl)
	c.store.Wait()
}

// GetOrLoad returns the cached body for key or runs loader once for all
// concurrent callers and caches its result. The shared load is detached from
// the caller that started it; each caller stops waiting when its own ctx ends.
func (c *QueryCache) GetOrLoad(ctx context.Context, key string, loader func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if body, ok := c.Get(key); ok {
		return body, nil
	}
	ch := c.singleGroup.DoChan(key, func() (any, error) {
		if body, ok := c.Get(key); ok {
			return body, nil
		}
		gen := c.generation(key)
		loadCtx, cancel := c.loadContext(ctx)
		defer cancel()
		body, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		c.setIfCurrent(key, gen, body)
		return body, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *QueryCache) loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if c.loadTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, c.loadTimeout)
}

func (c *QueryCache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key]
}

// setIfCurrent stores body unless key was invalidated after the load began.
func (c *QueryCache) setIfCurrent(key string, gen uint64, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key] != gen {
		return
	}
	c.Set(key, body)
}

// Invalidate drops the given keys so the next read refetches. Loads already
// in flight for these keys still answer their callers but are not cached.
func (c *QueryCache) Invalidate(keys ...string) {
	c.mu.Lock()
	for _, k := range keys {
		c.generations[k]++
		c.singleGroup.Forget(k)
		c.store.Del(k)
	}
	c.mu.Unlock()
	c.store.Wait()
}

// Close releases the cache's background goroutines.
func (c *QueryCache) Close() {
	c.store.Close()
}
