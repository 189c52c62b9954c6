package category

import (
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/theirongolddev/spendvibe/internal/config"
	"github.com/theirongolddev/spendvibe/internal/model"
)

// Cache keeps built indexes keyed by hierarchy fingerprint so repeated
// analyses over the same hierarchy skip the rebuild. Safe for concurrent use.
type Cache struct {
	c *ristretto.Cache
}

// NewCache creates a cache holding up to maxEntries indexes.
func NewCache(maxEntries int64) (*Cache, error) {
	if maxEntries < 1 {
		maxEntries = 16
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		// cost counts entries, not bytes
		IgnoreInternalCost: true,
		Metrics:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating category cache: %w", err)
	}
	return &Cache{c: c}, nil
}

// Index returns the cached index for the hierarchy, building it on a miss.
func (c *Cache) Index(cats []model.Category, pol config.Categories) *Index {
	key := Fingerprint(cats, pol)
	if v, ok := c.c.Get(key); ok {
		if idx, ok := v.(*Index); ok {
			return idx
		}
	}

	idx := Build(cats, pol)
	c.c.Set(key, idx, 1)
	c.c.Wait()
	return idx
}

// Hits returns how many lookups were served without a rebuild.
func (c *Cache) Hits() uint64 {
	return c.c.Metrics.Hits()
}

// Close releases the cache's background goroutines.
func (c *Cache) Close() {
	c.c.Close()
}
