// Package cache provides a small TTL cache for derived insight results.
// Entries expire after a fixed duration; a bounded size evicts the least
// recently written entry when full.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	data      T
	expiresAt time.Time
	seq       uint64
}

// TTL is a concurrency-safe string-keyed cache with per-entry expiry.
type TTL[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	seq     uint64
	items   map[string]entry[T]
}

func New[T any](maxSize int, ttl time.Duration) *TTL[T] {
	return &TTL[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]entry[T]),
	}
}

// Get returns the cached value when present and unexpired.
func (c *TTL[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.items, key)
		return zero, false
	}
	return e.data, true
}

// Set stores a value for the cache's TTL, evicting the least recently
// written entry if the cache is full.
func (c *TTL[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.seq++
	c.items[key] = entry[T]{data: data, expiresAt: time.Now().Add(c.ttl), seq: c.seq}
}

// Delete removes a key.
func (c *TTL[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// CleanExpired drops every expired entry and reports how many were removed.
func (c *TTL[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for k, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Size returns the current entry count.
func (c *TTL[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// evictOldestLocked drops the least recently written entry.
func (c *TTL[T]) evictOldestLocked() {
	var oldestKey string
	var oldestSeq uint64
	first := true
	for k, e := range c.items {
		if first || e.seq < oldestSeq {
			oldestKey, oldestSeq = k, e.seq
			first = false
		}
	}
	if !first {
		delete(c.items, oldestKey)
	}
}
