package digest

import (
	"sync"
)

// Cache memoizes digest computations for the duration of one comparison
// run. A key is computed at most once even when several workers request
// it concurrently; errors are memoized the same way as values.
// The cache is discarded with the run, so there is no cross-run state.
type Cache struct {
	entries sync.Map // key -> *cacheEntry
}

type cacheEntry struct {
	once sync.Once
	val  string
	err  error
}

// NewCache creates an empty run-scoped cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the memoized value for key, invoking compute on first use.
func (c *Cache) Get(key string, compute func() (string, error)) (string, error) {
	v, _ := c.entries.LoadOrStore(key, &cacheEntry{})
	e := v.(*cacheEntry)
	e.once.Do(func() {
		e.val, e.err = compute()
	})
	return e.val, e.err
}
