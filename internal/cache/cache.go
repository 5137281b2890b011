// Package cache provides a bounded in-memory key-value store with TTL
// expiry and single-flight coalescing of concurrent computations.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const sweepInterval = time.Minute

type entry[V any] struct {
	value      V
	insertedAt time.Time
	expiresAt  time.Time
}

// Cache stores up to maxSize values for ttl each. When inserting would
// exceed capacity, the entry with the oldest insertion time is evicted
// first. Expired entries are treated as absent: they are removed lazily
// on access and by a background sweep. All methods are safe for
// concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	group   singleflight.Group
	clock   clockwork.Clock
	ttl     time.Duration
	maxSize int
	stopCh  chan struct{}
	once    sync.Once
}

// New creates a Cache. maxSize must be positive. The clock is injected
// so expiry is testable with a fake clock.
func New[V any](ttl time.Duration, maxSize int, clock clockwork.Clock) *Cache[V] {
	c := &Cache[V]{
		entries: make(map[string]entry[V]),
		clock:   clock,
		ttl:     ttl,
		maxSize: maxSize,
		stopCh:  make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// GetOrCompute returns the cached value for key, running compute to
// produce it on a miss. Concurrent callers for the same key share a
// single compute invocation and all receive its outcome. A failed
// computation is never stored, so the next caller retries.
//
// compute runs outside the cache's critical section; only the map
// bookkeeping is serialized.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: a previous flight may have stored
		// the value between our miss and joining the group.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Len reports the number of live entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeExpired(c.clock.Now())
	return len(c.entries)
}

// Close stops the background sweep goroutine.
func (c *Cache[V]) Close() {
	c.once.Do(func() {
		close(c.stopCh)
	})
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) store(key string, value V) {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeExpired(now)
	if _, ok := c.entries[key]; !ok {
		for len(c.entries) >= c.maxSize {
			c.evictOldest()
		}
	}
	c.entries[key] = entry[V]{value: value, insertedAt: now, expiresAt: now.Add(c.ttl)}
}

func (c *Cache[V]) purgeExpired(now time.Time) {
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// evictOldest removes the entry with the earliest insertion time.
// Caller must hold c.mu.
func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, e := range c.entries {
		if first || e.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.insertedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache[V]) sweepLoop() {
	ticker := c.clock.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.Chan():
			c.mu.Lock()
			c.purgeExpired(now)
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}
