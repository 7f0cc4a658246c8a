// Package resource keeps an in-memory copy of each remote collection the
// views render from. A collection refreshes itself from the store, swallows
// read failures into a displayable error, and is patched in place after
// successful mutations so pages never wait on a re-fetch they don't need.
package resource

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultFetchTimeout bounds every collection fetch. A slow store read
// fails the refresh instead of wedging the page that triggered it.
const DefaultFetchTimeout = 10 * time.Second

// Collection caches one list-shaped resource.
//
// Contract for readers: Items is never nil, Err is "" after a successful
// refresh, and Loading is false once a refresh has settled either way.
// Contract for writers: Prepend/Replace/Remove are only called after the
// store accepted the mutation, so a failed mutation leaves the cache
// untouched.
type Collection[T any] struct {
	label   string
	fetch   func(context.Context) ([]T, error)
	id      func(T) string
	timeout time.Duration

	mu      sync.Mutex
	items   []T
	errMsg  string
	loading bool
	gen     uint64
}

func NewCollection[T any](label string, fetch func(context.Context) ([]T, error), id func(T) string) *Collection[T] {
	return &Collection[T]{
		label:   label,
		fetch:   fetch,
		id:      id,
		timeout: DefaultFetchTimeout,
		items:   []T{},
	}
}

// Refresh re-reads the collection from the store. Each call supersedes any
// still-running refresh: the stale response is discarded when it finally
// lands, so rapid re-invocation cannot clobber newer data.
func (c *Collection[T]) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.gen++
	myGen := c.gen
	c.loading = true
	c.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	items, err := c.fetch(fetchCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != myGen {
		// A newer refresh owns the state now.
		return
	}
	c.loading = false
	if err != nil {
		slog.Error("Failed to refresh collection", "resource", c.label, "error", err)
		c.items = []T{}
		c.errMsg = "failed to load " + c.label + ": " + err.Error()
		return
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.errMsg = ""
}

// Items returns a copy of the cached list. Never nil.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last refresh failure as a displayable message, or ""
func (c *Collection[T]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if c.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Prepend puts a freshly created row at the front of the cache.
func (c *Collection[T]) Prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
}

// Replace swaps the row with the given id for its updated version.
func (c *Collection[T]) Replace(id string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items[i] = item
			return
		}
	}
}

// Remove filters the row with the given id out of the cache.
func (c *Collection[T]) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, item := range c.items {
		if c.id(item) != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
}
