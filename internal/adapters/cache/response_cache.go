package cache

import (
	"container/list"
	"sync"

	"consolidation-route-service/internal/platform/metrics"
)

// DefaultCapacity is the number of provider responses kept before eviction.
const DefaultCapacity = 100

// ResponseCache is a bounded in-process cache for raw routing provider
// responses. Eviction is first-in-first-out by insertion time; a lookup does
// not change an entry's position.
//
// The cache is safe for concurrent use.
type ResponseCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key   string
	value []byte
}

// NewResponseCache returns a cache holding at most capacity entries.
// A non-positive capacity falls back to DefaultCapacity.
func NewResponseCache(capacity int) *ResponseCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ResponseCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns a copy of the cached value for key.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	v := el.Value.(*cacheEntry).value
	return append([]byte(nil), v...), true
}

// Put stores value under key. Replacing an existing key keeps its original
// insertion position. Inserting past capacity evicts the oldest entry.
func (c *ResponseCache) Put(key string, value []byte) {
	v := append([]byte(nil), value...)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).value = v
		return
	}

	c.entries[key] = c.order.PushBack(&cacheEntry{key: key, value: v})

	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
		metrics.CacheEvictions.Inc()
	}
}

// Len returns the number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
