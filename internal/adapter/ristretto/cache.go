// Package ristretto implements the in-process L1 tier of the cache port
// using dgraph-io/ristretto. It fronts the shared Redis tier for tenant
// lookups, which run on nearly every request.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// avgEntryBytes approximates a serialized tenant record. Ristretto sizes
// its admission counters from the expected entry count.
const avgEntryBytes = 256

// Cache wraps a ristretto cache as an in-process L1 cache.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a ristretto-backed cache. maxCostBytes caps the total size of
// cached keys and values.
func New(maxCostBytes int64) (*Cache, error) {
	expectedEntries := maxCostBytes / avgEntryBytes
	if expectedEntries < 64 {
		expectedEntries = 64
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: expectedEntries * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Get retrieves a value from the cache.
func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	val, found := c.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores a value with the given TTL. The entry is costed by key plus
// value size against the configured byte budget.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, value, int64(len(key)+len(value)), ttl)
	return nil
}

// Delete removes a value from the cache.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// Wait blocks until buffered writes have been applied.
func (c *Cache) Wait() {
	c.c.Wait()
}

// Close shuts down the cache and releases resources.
func (c *Cache) Close() {
	c.c.Close()
}
