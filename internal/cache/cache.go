// Package cache memoizes computed values behind a small keyed interface.
package cache

// Cache is a keyed store for computed values
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Nop stores nothing; every Get misses
type Nop[T any] struct{}

func (Nop[T]) Get(string) (T, bool) {
	var zero T
	return zero, false
}

func (Nop[T]) Set(string, T) {}

func (Nop[T]) Delete(string) {}

func (Nop[T]) Size() int { return 0 }
