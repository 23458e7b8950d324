package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
	"github.com/relist-labs/relist-cli/internal/logger"
)

// RequirementsCache memoizes aspect schema fetches for the lifetime of a
// batch run. Many products in one run land in the same category; the
// taxonomy API should be asked once per category, not once per product.
// Empty schemas are cached too.
//
// Concurrent first misses on the same category may both hit the API; the
// later write wins and the results are identical, so the duplicate call
// is harmless.
type RequirementsCache struct {
	source driven.TaxonomySource

	mu      sync.Mutex
	schemas map[string]domain.AspectSchema
}

// NewRequirementsCache creates a cache over the given taxonomy source.
func NewRequirementsCache(source driven.TaxonomySource) *RequirementsCache {
	return &RequirementsCache{
		source:  source,
		schemas: make(map[string]domain.AspectSchema),
	}
}

// Get returns the aspect schema for a category, fetching it on first use.
func (c *RequirementsCache) Get(ctx context.Context, categoryID string) (domain.AspectSchema, error) {
	c.mu.Lock()
	schema, ok := c.schemas[categoryID]
	c.mu.Unlock()
	if ok {
		logger.Debug("Aspect schema cache hit for category %s", categoryID)
		return schema, nil
	}

	schema, err := c.source.FetchAspects(ctx, categoryID)
	if err != nil {
		return domain.AspectSchema{}, fmt.Errorf("fetch aspects for %s: %w", categoryID, err)
	}

	c.mu.Lock()
	c.schemas[categoryID] = schema
	c.mu.Unlock()

	logger.Debug("Cached aspect schema for category %s (%d aspects)", categoryID, len(schema.Aspects))
	return schema, nil
}

// Len returns the number of cached schemas.
func (c *RequirementsCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.schemas)
}
