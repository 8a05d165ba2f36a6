package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Loader produces the value for a missing or expired key
type Loader[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value     V
	storedAt  time.Time
	expiresAt time.Time
}

// Stats counts cache activity since creation
type Stats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Loads    int64 `json:"loads"`
	Failures int64 `json:"failures"`
	Entries  int   `json:"entries"`
}

// TTLCache is a bounded cache whose entries expire after a per-call TTL.
// Concurrent misses on one key share a single load; failed loads are not stored.
type TTLCache[V any] struct {
	store *lru.Cache[string, entry[V]]
	group singleflight.Group
	now   func() time.Time

	hits     atomic.Int64
	misses   atomic.Int64
	loads    atomic.Int64
	failures atomic.Int64
}

// New creates a cache holding at most size keys
func New[V any](size int) (*TTLCache[V], error) {
	store, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}
	return &TTLCache[V]{store: store, now: time.Now}, nil
}

// WithClock replaces the time source, used by tests
func (c *TTLCache[V]) WithClock(now func() time.Time) *TTLCache[V] {
	c.now = now
	return c
}

// Get returns a fresh value and the time it was stored
func (c *TTLCache[V]) Get(key string) (V, time.Time, bool) {
	e, ok := c.store.Get(key)
	if !ok || !c.now().Before(e.expiresAt) {
		var zero V
		return zero, time.Time{}, false
	}
	return e.value, e.storedAt, true
}

// GetOrLoad returns the cached value for key or runs load once for all
// concurrent callers. The load runs detached from the caller's cancellation
// so one abandoned request does not fail the others waiting on it.
func (c *TTLCache[V]) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load Loader[V]) (V, error) {
	if v, _, ok := c.Get(key); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, _, ok := c.Get(key); ok {
			return v, nil
		}
		c.loads.Add(1)
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			c.failures.Add(1)
			return nil, err
		}
		now := c.now()
		c.store.Add(key, entry[V]{value: v, storedAt: now, expiresAt: now.Add(ttl)})
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Invalidate drops key and detaches any load in flight for it, so the
// next GetOrLoad starts a fresh load.
func (c *TTLCache[V]) Invalidate(key string) {
	c.group.Forget(key)
	c.store.Remove(key)
}

// InvalidateAll drops every entry
func (c *TTLCache[V]) InvalidateAll() {
	for _, k := range c.store.Keys() {
		c.group.Forget(k)
	}
	c.store.Purge()
}

// Stats returns a snapshot of the counters
func (c *TTLCache[V]) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Loads:    c.loads.Load(),
		Failures: c.failures.Load(),
		Entries:  c.store.Len(),
	}
}
