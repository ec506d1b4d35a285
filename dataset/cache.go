/*
cache.go - Process-local cache of the last-loaded Tables

POLICY:
  Keep the last successfully loaded Tables in memory. There is no eviction:
  - Get loads once on first use and then serves the cached value
  - Reload replaces the value only when the new load succeeds
  - Invalidate drops the value so the next Get reloads

CONCURRENCY:
  Guarded by a mutex. Loads run while holding it, so callers that arrive
  during the first load wait for it instead of starting their own.
*/
package dataset

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Cache holds the last-loaded Tables of a Source.
type Cache struct {
	source Source
	logger *zap.Logger

	mu     sync.Mutex
	tables *Tables
}

// NewCache creates an empty cache over source.
func NewCache(source Source, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{source: source, logger: logger}
}

// Get returns the cached tables, loading them on first use.
func (c *Cache) Get(ctx context.Context) (*Tables, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tables != nil {
		return c.tables, nil
	}
	return c.loadLocked(ctx)
}

// Reload loads the source again. The previous tables are kept on failure.
func (c *Cache) Reload(ctx context.Context) (*Tables, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loadLocked(ctx)
}

// Invalidate drops the cached tables.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.tables = nil
	c.mu.Unlock()
}

// Loaded reports whether tables are cached.
func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tables != nil
}

func (c *Cache) loadLocked(ctx context.Context) (*Tables, error) {
	if c.source == nil {
		return nil, ErrNoSource
	}
	tables, err := c.source.Load(ctx)
	if err != nil {
		c.logger.Error("dataset load failed", zap.Error(err), zap.Bool("kept_previous", c.tables != nil))
		return nil, err
	}
	c.tables = tables
	c.logger.Info("dataset loaded",
		zap.String("source", tables.Source),
		zap.Int("products", len(tables.Products)),
		zap.Int("sales", len(tables.Sales)),
	)
	return tables, nil
}
