// Package cache remembers which image was resolved for a directory.
//
// The cache is bounded by entry count and evicts in insertion order: the
// entry inserted longest ago goes first, regardless of how recently it was
// read. Reinserting a key counts as a fresh insertion.
package cache

import (
	"container/list"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mmcdole/sleeve/internal/domain"
)

// DefaultCapacity is used when New is given a capacity below one
const DefaultCapacity = 256

// Backing is an optional second tier that outlives the process.
// Writes go through on Insert and Remove; Lookup misses consult it.
type Backing interface {
	Get(key string) (domain.CacheEntry, bool)
	Put(entry domain.CacheEntry) error
	Delete(key string) error
}

// Option configures a Cache
type Option func(*Cache)

// WithBacking attaches a persistent tier
func WithBacking(b Backing) Option {
	return func(c *Cache) { c.backing = b }
}

// WithClock replaces time.Now for entry timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element // value is domain.CacheEntry
	order    *list.List               // front is oldest

	backing Backing
	now     func() time.Time
}

// New creates a cache holding at most capacity directories
func New(capacity int, opts ...Option) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capacity returns the entry bound
func (c *Cache) Capacity() int {
	return c.capacity
}

// Lookup returns the entry for key if its image is still a readable file.
// An entry whose image has gone away is dropped and reported as a miss.
func (c *Cache) Lookup(key string) (domain.CacheEntry, bool) {
	c.mu.Lock()
	el, ok := c.entries[key]
	if ok {
		entry := el.Value.(domain.CacheEntry)
		c.mu.Unlock()
		if validImage(entry.ImagePath) {
			return entry, true
		}
		c.Remove(key)
		return domain.CacheEntry{}, false
	}
	c.mu.Unlock()

	if c.backing == nil {
		return domain.CacheEntry{}, false
	}

	entry, ok := c.backing.Get(key)
	if !ok {
		return domain.CacheEntry{}, false
	}
	if !validImage(entry.ImagePath) {
		c.backing.Delete(key)
		return domain.CacheEntry{}, false
	}

	// Promote into the memory tier
	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		// Lost a race with Insert; the newer entry wins
		entry = el.Value.(domain.CacheEntry)
	} else {
		c.insertLocked(entry)
	}
	c.mu.Unlock()
	return entry, true
}

// Insert records imagePath as the resolution for key, replacing any earlier
// entry. The image must be a readable regular file.
func (c *Cache) Insert(key, imagePath string) (domain.CacheEntry, error) {
	info, err := os.Stat(imagePath)
	if err != nil {
		return domain.CacheEntry{}, fmt.Errorf("cache insert %s: %w", key, err)
	}
	if !info.Mode().IsRegular() {
		return domain.CacheEntry{}, fmt.Errorf("cache insert %s: %s is not a regular file", key, imagePath)
	}

	entry := domain.CacheEntry{
		DirectoryKey: key,
		ImagePath:    imagePath,
		SizeBytes:    info.Size(),
		Timestamp:    c.now(),
	}

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
	evicted := c.insertLocked(entry)
	c.mu.Unlock()

	if c.backing != nil {
		for _, k := range evicted {
			c.backing.Delete(k)
		}
		if err := c.backing.Put(entry); err != nil {
			return entry, fmt.Errorf("cache backing put %s: %w", key, err)
		}
	}
	return entry, nil
}

// insertLocked appends entry as newest, evicting the oldest entries when
// the cache is full. Callers hold mu. Returns the evicted keys.
func (c *Cache) insertLocked(entry domain.CacheEntry) []string {
	var evicted []string
	for c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		key := oldest.Value.(domain.CacheEntry).DirectoryKey
		c.order.Remove(oldest)
		delete(c.entries, key)
		evicted = append(evicted, key)
	}
	c.entries[entry.DirectoryKey] = c.order.PushBack(entry)
	return evicted
}

// Remove drops key from both tiers
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if c.backing != nil {
		c.backing.Delete(key)
	}
}

// Len returns the number of entries in the memory tier
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Entries returns the memory tier oldest first
func (c *Cache) Entries() []domain.CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.CacheEntry, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(domain.CacheEntry))
	}
	return out
}

func validImage(path string) bool {
	if path == "" {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && info.Mode().IsRegular()
}
