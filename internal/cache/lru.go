package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRU is a size-bounded cache whose entries also expire after a TTL.
// Expired entries are purged in the background by the underlying cache.
type LRU[T any] struct {
	lru *expirable.LRU[string, T]
}

// NewLRU creates an LRU cache with TTL. A non-positive size disables caching.
func NewLRU[T any](size int, ttl time.Duration) Cache[T] {
	if size <= 0 {
		return Nop[T]{}
	}
	return &LRU[T]{lru: expirable.NewLRU[string, T](size, nil, ttl)}
}

// Get retrieves a live value from the cache
func (c *LRU[T]) Get(key string) (T, bool) {
	return c.lru.Get(key)
}

// Set stores a value, evicting the least recently used entry when full
func (c *LRU[T]) Set(key string, data T) {
	c.lru.Add(key, data)
}

// Delete removes a key from the cache
func (c *LRU[T]) Delete(key string) {
	c.lru.Remove(key)
}

// Size returns the number of entries held, including expired ones not yet purged
func (c *LRU[T]) Size() int {
	return c.lru.Len()
}
