// Package cache provides the process-local TTL cache that sits in front of
// backend lookups.
package cache

import (
	"sync"
	"time"

	"github.com/vietddude/localguide/internal/directory/metrics"
)

// DefaultTTL is applied when Set receives a non-positive ttl.
const DefaultTTL = 5 * time.Minute

// Options configures a Cache.
type Options struct {
	// DefaultTTL overrides the package default.
	DefaultTTL time.Duration
	// MaxEntries bounds the cache; on overflow the oldest-written entry is
	// evicted. Zero means unbounded.
	MaxEntries int
	// Now lets tests drive expiration. Defaults to time.Now.
	Now func() time.Time
}

type entry struct {
	data      any
	writtenAt time.Time
	ttl       time.Duration
}

func (e *entry) valid(now time.Time) bool {
	return now.Sub(e.writtenAt) <= e.ttl
}

// Cache is a key/value store with per-entry expiration. It is safe for
// concurrent use.
type Cache struct {
	defaultTTL time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty cache.
func New(opts Options) *Cache {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		defaultTTL: opts.DefaultTTL,
		maxEntries: opts.MaxEntries,
		now:        opts.Now,
		entries:    make(map[string]*entry),
	}
}

// Get returns the value for key. An expired entry is evicted and reported
// as absent.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()
		return nil, false
	}
	if !e.valid(c.now()) {
		delete(c.entries, key)
		metrics.CacheEntries.Set(float64(len(c.entries)))
		metrics.CacheLookups.WithLabelValues("memory", "expired").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("memory", "hit").Inc()
	return e.data, true
}

// Set stores value under key. A non-positive ttl uses the default.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.sweepLocked(now)
		if len(c.entries) >= c.maxEntries {
			c.evictOldestLocked()
		}
	}

	c.entries[key] = &entry{data: value, writtenAt: now, ttl: ttl}
	metrics.CacheEntries.Set(float64(len(c.entries)))
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	metrics.CacheEntries.Set(float64(len(c.entries)))
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	metrics.CacheEntries.Set(0)
	c.mu.Unlock()
}

// Cleanup sweeps all expired entries and returns how many were removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.sweepLocked(c.now())
	metrics.CacheEntries.Set(float64(len(c.entries)))
	return removed
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range c.entries {
		if !e.valid(now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.writtenAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.writtenAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// GetAs is a typed Get. A stored value of another type is treated as absent.
func GetAs[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
