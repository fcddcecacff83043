package loader

import (
	"path/filepath"
	"sync"

	"github.com/pable/go-cr-dashboard/internal/model"
)

// LoadFunc reads one source into a table.
type LoadFunc func(path string) (*model.Table, error)

type cacheEntry struct {
	once sync.Once
	tbl  *model.Table
	err  error
}

// Cache memoises loads per source path for the life of the process.
// Failed loads are remembered as well; a bad file is not re-read.
type Cache struct {
	load LoadFunc

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// NewCache returns a cache backed by fn, or by Load when fn is nil.
func NewCache(fn LoadFunc) *Cache {
	if fn == nil {
		fn = Load
	}
	return &Cache{load: fn, entries: make(map[string]*cacheEntry)}
}

// Get returns the table for path, loading it on first use. The returned table
// is shared and must not be mutated.
func (c *Cache) Get(path string) (*model.Table, error) {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.tbl, e.err = c.load(path)
	})
	return e.tbl, e.err
}

// Len reports how many distinct sources have been requested.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var defaultCache = NewCache(nil)

// Cached loads path through the process-wide cache.
func Cached(path string) (*model.Table, error) {
	return defaultCache.Get(path)
}
