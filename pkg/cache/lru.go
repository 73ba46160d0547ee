package cache

import (
	"container/list"
	"sync"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a fixed-capacity cache that evicts the least recently used entry.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List

	hits   uint64
	misses uint64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len    int
	Hits   uint64
	Misses uint64
}

// New creates an LRU with the given capacity. It panics if capacity is not positive.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		panic("cache: LRU capacity must be positive")
	}
	return &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached value and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(key)
}

// Add inserts or replaces a value. It reports whether an entry was evicted.
func (c *LRU[K, V]) Add(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(key, value)
}

// GetOrLoad returns the cached value for key, computing and storing it with
// load on a miss. load runs outside the lock; concurrent misses for the same
// key may each call it and the last result wins.
func (c *LRU[K, V]) GetOrLoad(key K, load func(K) V) V {
	c.mu.Lock()
	if v, ok := c.get(key); ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	v := load(key)

	c.mu.Lock()
	c.add(key, v)
	c.mu.Unlock()
	return v
}

// Remove deletes key and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.order.Remove(elem)
	delete(c.items, key)
	return true
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops every entry and resets the counters.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.items)
	c.order.Init()
	c.hits, c.misses = 0, 0
}

// Stats returns the current size and hit/miss counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Len: c.order.Len(), Hits: c.hits, Misses: c.misses}
}

// Must be called with lock held.
func (c *LRU[K, V]) get(key K) (V, bool) {
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		c.hits++
		return elem.Value.(*entry[K, V]).value, true
	}
	c.misses++
	var zero V
	return zero, false
}

// Must be called with lock held.
func (c *LRU[K, V]) add(key K, value V) bool {
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*entry[K, V]).value = value
		return false
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
	if c.order.Len() <= c.capacity {
		return false
	}

	oldest := c.order.Back()
	c.order.Remove(oldest)
	delete(c.items, oldest.Value.(*entry[K, V]).key)
	return true
}
