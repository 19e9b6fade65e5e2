// Package cache provides a bounded, concurrency-safe least-recently-used cache.
//
// HOW IT WORKS:
// Two structures are kept in step:
//
//	items  map[K]*list.Element   → O(1) lookup by key
//	order  *list.List            → recency order, front = most recently used
//
// Get moves the hit to the front. Add inserts at the front and, once the
// cache is over capacity, drops the element at the back. There is no
// time-based expiry: an entry lives until it is evicted.
//
// CONCURRENCY:
// A single mutex guards both structures. Even Get mutates (it reorders the
// list), so a RWMutex would buy nothing here.
package cache

import (
	"container/list"
	"sync"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a fixed-capacity cache. The zero value is not usable; call New.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List
}

// New returns an empty cache holding at most capacity entries.
// A capacity below 1 is raised to 1.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the value for key and marks it as most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry[K, V]).value, true
}

// Add stores value under key as the most recently used entry, evicting the
// least recently used one when the cache is full. It reports whether an
// eviction happened.
func (c *LRU[K, V]) Add(key K, value V) (evicted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(el)
		return false
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry[K, V]).key)
		return true
	}
	return false
}

// Contains reports whether key is cached without touching its recency.
func (c *LRU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Cap returns the configured capacity.
func (c *LRU[K, V]) Cap() int {
	return c.capacity
}
