// Package sample provides color sampling support: a bounded result cache
// keyed on the full sampling context, and statistics over rectangular
// regions of a layer.
package sample

const (
	// DefaultCapacity bounds the cache when no explicit capacity is given.
	DefaultCapacity = 100

	// evictBatch is how many of the oldest entries are dropped in one pass
	// once the cache is full. Evicting in batches keeps steady-state
	// sampling from paying an eviction on every insert.
	evictBatch = 10
)

// Cache is a bounded key/value cache with batch FIFO eviction. When an
// insert would exceed the capacity, the oldest-inserted entries are dropped
// in a batch. Recency of access does not matter; a sampled pixel is only
// worth keeping while the layer geometry that produced it is unchanged, and
// callers invalidate with Clear on any such change. Cache is not safe for
// concurrent use.
type Cache[K comparable, V any] struct {
	capacity int
	entries  map[K]V
	order    []K
}

// NewCache creates a cache bounded to the given capacity. A capacity of zero
// or less selects DefaultCapacity.
func NewCache[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[K, V]{
		capacity: capacity,
		entries:  make(map[K]V, capacity),
	}
}

// Get returns the cached value for key, if present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a value. Re-putting an existing key updates the value without
// refreshing its insertion order. When the cache is full, the oldest
// entries are evicted in a batch before the insert.
func (c *Cache[K, V]) Put(key K, value V) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}
	if len(c.entries) >= c.capacity {
		c.evict()
	}
	c.entries[key] = value
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int { return len(c.entries) }

// Cap returns the cache capacity.
func (c *Cache[K, V]) Cap() int { return c.capacity }

// Clear discards every entry.
func (c *Cache[K, V]) Clear() {
	c.entries = make(map[K]V, c.capacity)
	c.order = c.order[:0]
}

func (c *Cache[K, V]) evict() {
	n := evictBatch
	if n > len(c.order) {
		n = len(c.order)
	}
	for _, key := range c.order[:n] {
		delete(c.entries, key)
	}
	c.order = append(c.order[:0], c.order[n:]...)
}
