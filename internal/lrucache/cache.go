// Package lrucache implements the bounded canonical-key -> id cache
// described in spec.md §4.2: strict LRU eviction, hit/miss counters,
// and a zero-capacity mode that disables caching entirely.
//
// Grounded on the pack's container/list-based L1Cache
// (O-tero-Distributed-Caching-System/cache-manager/cache.go), trimmed
// of TTL (this registry is append-only, so entries are never expired,
// only evicted) and switched from RWMutex to a plain Mutex because
// every Get here also mutates the LRU list.
package lrucache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

type entry struct {
	key   string
	value int32
}

// Cache is a thread-safe, fixed-capacity LRU mapping canonical bytes to
// registry ids. A capacity of zero disables caching: every Get is a
// miss and Put is a no-op.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a cache with the given capacity. Capacity must be >= 0.
func New(capacity int) *Cache {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get looks up key, promoting it to most-recently-used on a hit.
func (c *Cache) Get(key string) (int32, bool) {
	if c.capacity == 0 {
		c.misses.Add(1)
		return 0, false
	}

	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		return 0, false
	}
	c.order.MoveToFront(el)
	id := el.Value.(*entry).value
	c.mu.Unlock()

	c.hits.Add(1)
	return id, true
}

// Put inserts or promotes key -> id, evicting the least-recently-used
// entry if the cache is at capacity and key is new. A no-op when
// capacity is zero.
func (c *Cache) Put(key string, id int32) {
	if c.capacity == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).value = id
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictOldestLocked()
	}

	el := c.order.PushFront(&entry{key: key, value: id})
	c.items[key] = el
}

func (c *Cache) evictOldestLocked() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.items, oldest.Value.(*entry).key)
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Hits returns the cumulative cache hit count.
func (c *Cache) Hits() uint64 { return c.hits.Load() }

// Misses returns the cumulative cache miss count.
func (c *Cache) Misses() uint64 { return c.misses.Load() }

// HitRate returns hits*100/(hits+misses), or 0 when there have been no
// lookups at all.
func (c *Cache) HitRate() float64 {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) * 100 / float64(total)
}
