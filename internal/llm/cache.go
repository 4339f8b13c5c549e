package llm

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheTTL      = 15 * time.Minute
	defaultSweepInterval = 5 * time.Minute
)

// cacheEntry is a stored completion and when it was stored.
type cacheEntry struct {
	createdAt time.Time
	result    Result
	ttl       time.Duration
}

func (e cacheEntry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) >= e.ttl
}

// completionCache stores successful completions by request key and collapses
// concurrent identical requests into one upstream call.
type completionCache struct {
	entries  map[string]cacheEntry
	now      func() time.Time
	stopCh   chan struct{}
	inflight singleflight.Group
	ttl      time.Duration
	mu       sync.Mutex
	stopOnce sync.Once
}

// newCompletionCache creates a cache with the given default TTL. A positive
// sweepInterval starts a background sweep of expired entries.
func newCompletionCache(ttl, sweepInterval time.Duration) *completionCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	cache := &completionCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
		stopCh:  make(chan struct{}),
		ttl:     ttl,
	}

	if sweepInterval > 0 {
		go cache.cleanup(sweepInterval)
	}

	return cache
}

// get returns a live entry. Expired entries are evicted on lookup.
func (c *completionCache) get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return Result{}, false
	}

	if entry.expired(c.now()) {
		delete(c.entries, key)
		return Result{}, false
	}

	return entry.result, true
}

// set stores a result. A non-positive ttl uses the cache default.
func (c *completionCache) set(key string, result Result, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result:    result,
		createdAt: c.now(),
		ttl:       ttl,
	}
}

// deduplicate runs produce at most once at a time per key. Concurrent callers
// with the same key share the pending call's outcome; the slot is released
// once it settles. shared reports whether the result was shared.
func (c *completionCache) deduplicate(key string, produce func() (Result, error)) (result Result, shared bool, err error) {
	v, err, shared := c.inflight.Do(key, func() (any, error) {
		return produce()
	})
	if err != nil {
		return Result{}, shared, err
	}
	return v.(Result), shared, nil
}

// sweep removes every expired entry and returns how many were removed.
func (c *completionCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *completionCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// clear removes all entries from the cache.
func (c *completionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// size returns the number of stored entries, expired or not.
func (c *completionCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *completionCache) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
