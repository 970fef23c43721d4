// internal/cache/lru.go
//
// Small least-recently-used cache.
//
// Context
// -------
// Two callers share this type: the view engine keeps parsed template sets,
// and the session store keeps live sessions keyed by cookie id.  Both are
// hit from many request goroutines, so every method takes the mutex.
//
// OnEvict, when set, runs for entries pushed out by capacity pressure or
// removed explicitly.  It is called with the lock released.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a typed least-recently-used cache.  Zero value is not usable; call
// New.
type LRU[K comparable, V any] struct {
	mu   sync.Mutex
	cap  int
	ll   *list.List
	dict map[K]*list.Element

	// OnEvict observes removals.  Optional.
	OnEvict func(key K, val V)
}

type pair[K comparable, V any] struct {
	key K
	val V
}

// New returns an LRU with the given capacity.  Panics on capacity < 1.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	return &LRU[K, V]{
		cap:  capacity,
		ll:   list.New(),
		dict: make(map[K]*list.Element, capacity),
	}
}

// Get retrieves a value and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (val V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, hit := c.dict[key]; hit {
		c.ll.MoveToFront(ele)
		return ele.Value.(pair[K, V]).val, true
	}
	return val, false
}

// Peek retrieves a value without touching recency.
func (c *LRU[K, V]) Peek(key K) (val V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, hit := c.dict[key]; hit {
		return ele.Value.(pair[K, V]).val, true
	}
	return val, false
}

// Add inserts or updates a value.
func (c *LRU[K, V]) Add(key K, val V) {
	var evicted *pair[K, V]

	c.mu.Lock()
	if ele, hit := c.dict[key]; hit {
		ele.Value = pair[K, V]{key, val}
		c.ll.MoveToFront(ele)
		c.mu.Unlock()
		return
	}
	ele := c.ll.PushFront(pair[K, V]{key, val})
	c.dict[key] = ele
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		p := last.Value.(pair[K, V])
		delete(c.dict, p.key)
		evicted = &p
	}
	c.mu.Unlock()

	if evicted != nil && c.OnEvict != nil {
		c.OnEvict(evicted.key, evicted.val)
	}
}

// Remove deletes key.  It reports whether the key was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	ele, hit := c.dict[key]
	if !hit {
		c.mu.Unlock()
		return false
	}
	c.ll.Remove(ele)
	delete(c.dict, key)
	p := ele.Value.(pair[K, V])
	c.mu.Unlock()

	if c.OnEvict != nil {
		c.OnEvict(p.key, p.val)
	}
	return true
}

// Snapshot returns the entries from least to most recently used.  The
// slice is a copy, so callers may Remove while walking it.
func (c *LRU[K, V]) Snapshot() []V {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]V, 0, c.ll.Len())
	for ele := c.ll.Back(); ele != nil; ele = ele.Prev() {
		out = append(out, ele.Value.(pair[K, V]).val)
	}
	return out
}

// Purge empties the cache without calling OnEvict.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	c.ll.Init()
	c.dict = make(map[K]*list.Element, c.cap)
	c.mu.Unlock()
}

// Len reports current size.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
