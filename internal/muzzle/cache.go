package muzzle

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/mabhi256/jmuzzle/internal/classpath"
)

// ResultCache remembers one boolean per symbol space. Entries are keyed by
// the space's ID so the map never holds the space itself; a cleanup attached
// to the space drops the entry once the space is collected.
type ResultCache struct {
	mu      sync.RWMutex
	results map[string]bool
	group   singleflight.Group

	computations atomic.Int64
}

func NewResultCache() *ResultCache {
	return &ResultCache{
		results: make(map[string]bool),
	}
}

// Get returns the cached result for space, if any
func (c *ResultCache) Get(space *classpath.Space) (bool, bool) {
	if space == nil {
		return false, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.results[space.ID()]
	return result, ok
}

// GetOrCompute returns the cached result for space or runs compute exactly
// once for it, even when many goroutines ask at the same time. A nil space
// has no identity and is never cached.
func (c *ResultCache) GetOrCompute(space *classpath.Space, compute func() bool) bool {
	if space == nil {
		c.computations.Add(1)
		return compute()
	}

	if result, ok := c.Get(space); ok {
		return result
	}

	id := space.ID()
	v, _, _ := c.group.Do(id, func() (interface{}, error) {
		// a previous flight may have stored the result between Get and Do
		if result, ok := c.Get(space); ok {
			return result, nil
		}

		c.computations.Add(1)
		result := compute()

		c.mu.Lock()
		c.results[id] = result
		c.mu.Unlock()

		runtime.AddCleanup(space, c.evict, id)
		return result, nil
	})

	return v.(bool)
}

func (c *ResultCache) evict(id string) {
	c.mu.Lock()
	delete(c.results, id)
	c.mu.Unlock()
}

// Len is the number of live entries
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// Computations counts how many times a result was actually computed
func (c *ResultCache) Computations() int64 {
	return c.computations.Load()
}
