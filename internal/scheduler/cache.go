package scheduler

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// lruCache is a fixed-capacity least-recently-used map. Get promotes the
// entry; Set past capacity drops the entry touched longest ago. Every
// operation holds the mutex for its whole duration.
type lruCache[K comparable, V any] struct {
	name    string
	mu      sync.Mutex
	entries *simplelru.LRU[K, V]
	metrics *Metrics
}

func newLRUCache[K comparable, V any](name string, size int, metrics *Metrics) (*lruCache[K, V], error) {
	entries, err := simplelru.NewLRU[K, V](size, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s cache: %w", name, err)
	}
	return &lruCache[K, V]{name: name, entries: entries, metrics: metrics}, nil
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries.Get(key)
	c.metrics.ObserveLookup(c.name, ok)
	return v, ok
}

func (c *lruCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if evicted := c.entries.Add(key, value); evicted {
		c.metrics.ObserveEviction(c.name)
	}
}

// Contains reports presence without touching recency.
func (c *lruCache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Contains(key)
}

func (c *lruCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}
