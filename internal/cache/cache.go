// Package cache provides the bounded inference cache that short-circuits
// repeated model calls for visually identical face crops.
package cache

import (
	"sync"

	"github.com/visioncraft-labs/emoscope/internal/domain"
)

// DefaultCapacity matches the observed hit-rate sweet spot: consecutive
// identical frames (a paused face) dominate the benefit, so a small cache is
// enough.
const DefaultCapacity = 10

// Entry is a cached classification outcome.
type Entry struct {
	Scores   domain.Scores
	Dominant domain.Emotion
}

// Inference is a bounded fingerprint→Entry cache with FIFO eviction: when
// full, the oldest-inserted entry is removed regardless of access recency.
// Lookup does not reorder entries. Safe for concurrent use; the streaming
// worker and request handlers share one instance.
type Inference struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]Entry
	order    []string
	hits     uint64
	misses   uint64
}

// NewInference creates a cache holding at most capacity entries. A
// non-positive capacity falls back to DefaultCapacity.
func NewInference(capacity int) *Inference {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Inference{
		capacity: capacity,
		entries:  make(map[string]Entry, capacity),
		order:    make([]string, 0, capacity),
	}
}

// Lookup returns the cached entry for a fingerprint, if present.
func (c *Inference) Lookup(fingerprint string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fingerprint]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return entry, ok
}

// Store inserts an entry, evicting the oldest-inserted one when the cache is
// full. Storing an existing fingerprint overwrites the value without
// touching insertion order.
func (c *Inference) Store(fingerprint string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[fingerprint]; exists {
		c.entries[fingerprint] = entry
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[fingerprint] = entry
	c.order = append(c.order, fingerprint)
}

// Len reports the number of cached entries.
func (c *Inference) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Hits reports the cumulative lookup hit count.
func (c *Inference) Hits() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Misses reports the cumulative lookup miss count.
func (c *Inference) Misses() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.misses
}
