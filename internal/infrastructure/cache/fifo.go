// Package cache provides the bounded in-process cache used for memoising
// backend results.  Eviction is strictly first-in-first-out: neither reads
// nor overwrites refresh an entry's position.
package cache

import (
	"container/list"
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/MacroCompare/pkg/errors"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 1000

// Recorder receives cache statistics.  The metrics layer implements it.
type Recorder interface {
	CacheHit()
	CacheMiss()
	CacheEntries(n int)
}

type nopRecorder struct{}

func (nopRecorder) CacheHit()        {}
func (nopRecorder) CacheMiss()       {}
func (nopRecorder) CacheEntries(int) {}

// Loader computes the value of a missing key.  When store is false the value
// is handed to every waiting caller but not retained.
type Loader[V any] func(ctx context.Context) (value V, store bool, err error)

type entry[V any] struct {
	key   string
	value V
}

// FIFO is a fixed-capacity map with insertion-order eviction.  All methods
// are safe for concurrent use.
type FIFO[V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element

	flights  singleflight.Group
	recorder Recorder
}

// Option configures a FIFO.
type Option[V any] func(*FIFO[V])

// WithRecorder attaches a statistics Recorder.
func WithRecorder[V any](r Recorder) Option[V] {
	return func(c *FIFO[V]) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewFIFO returns an empty cache holding at most capacity entries.
func NewFIFO[V any](capacity int, opts ...Option[V]) *FIFO[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &FIFO[V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capacity returns the configured bound.
func (c *FIFO[V]) Capacity() int { return c.capacity }

// Len returns the number of stored entries.
func (c *FIFO[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Get returns the value stored under key.
func (c *FIFO[V]) Get(key string) (V, bool) {
	v, ok := c.lookup(key)
	if ok {
		c.recorder.CacheHit()
	} else {
		c.recorder.CacheMiss()
	}
	return v, ok
}

func (c *FIFO[V]) lookup(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		return el.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Set stores value under key.  An existing key keeps its queue position.
// When the cache is full the oldest entry is evicted.
func (c *FIFO[V]) Set(key string, value V) {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		el.Value.(*entry[V]).value = value
		c.mu.Unlock()
		return
	}
	c.items[key] = c.order.PushBack(&entry[V]{key: key, value: value})
	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry[V]).key)
	}
	n := c.order.Len()
	c.mu.Unlock()

	c.recorder.CacheEntries(n)
}

// GetOrLoad returns the cached value for key or runs load exactly once per
// key among concurrent callers.  The first caller's ctx is the one passed to
// load.  The returned bool reports a cache hit.
func (c *FIFO[V]) GetOrLoad(ctx context.Context, key string, load Loader[V]) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	if load == nil {
		var zero V
		return zero, false, errors.New(errors.ErrCodeCacheError, "cache loader is nil")
	}

	res, err, _ := c.flights.Do(key, func() (interface{}, error) {
		// A flight that finished between Get and Do may have stored it.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, store, loadErr := load(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if store {
			c.Set(key, v)
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), false, nil
}

//Personal.AI order the ending
