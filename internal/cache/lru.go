package cache

import (
	"container/list"
	"sync"
)

// LRU cache with size-based eviction. Entries never expire: cached values are
// results of pure computations, so staleness is not a concern, only memory.
// Safe for concurrent readers and writers.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key  string
	data T
}

// NewLRUCache creates a new LRU cache holding at most maxSize entries.
func NewLRUCache[T any](maxSize int) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get retrieves a value from the cache
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	// Move to front (most recently used)
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheItem[T]).data, true
}

// Set stores a value in the cache
func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		elem.Value.(*cacheItem[T]).data = data
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(&cacheItem[T]{key: key, data: data})
	c.items[key] = elem

	// Evict if over capacity
	if c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		if oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Delete removes a key from the cache
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *LRUCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// Size returns the current number of items in the cache
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Snapshot returns a copy of the current contents, keyed as stored. Used to
// export computed distance tables for reuse across runs.
func (c *LRUCache[T]) Snapshot() map[string]T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]T, len(c.items))
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*cacheItem[T])
		out[item.key] = item.data
	}
	return out
}
