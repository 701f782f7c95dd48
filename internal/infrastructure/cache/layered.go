package cache

import (
	"context"
	"time"

	"github.com/mealmap/backend/internal/domain"
)

// LayeredCache puts an in-memory layer in front of a persistent store
type LayeredCache struct {
	memory    domain.CacheRepository
	store     domain.CacheRepository
	memoryTTL time.Duration
}

// NewLayeredCache creates a layered cache. Entries promoted from the store
// live in memory for at most memoryTTL.
func NewLayeredCache(memory, store domain.CacheRepository, memoryTTL time.Duration) *LayeredCache {
	return &LayeredCache{memory: memory, store: store, memoryTTL: memoryTTL}
}

// Get checks memory first, then the store, promoting store hits
func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if val, err := c.memory.Get(ctx, key); err == nil {
		return val, nil
	}

	val, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = c.memory.Set(ctx, key, val, c.memoryTTL)
	return val, nil
}

// Set writes through to both layers
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.store.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	memTTL := ttl
	if c.memoryTTL > 0 && (memTTL == 0 || memTTL > c.memoryTTL) {
		memTTL = c.memoryTTL
	}
	return c.memory.Set(ctx, key, value, memTTL)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	_ = c.memory.Delete(ctx, key)
	return c.store.Delete(ctx, key)
}

// Exists reports whether either layer holds a live entry
func (c *LayeredCache) Exists(ctx context.Context, key string) (bool, error) {
	if ok, _ := c.memory.Exists(ctx, key); ok {
		return true, nil
	}
	return c.store.Exists(ctx, key)
}

// Store returns the persistent layer
func (c *LayeredCache) Store() domain.CacheRepository {
	return c.store
}
