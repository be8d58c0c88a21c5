package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/nutriscan/backend/internal/domain"
)

// MemoryCache is a size-bounded, goroutine-safe product cache with TTL expiry
type MemoryCache struct {
	lru *expirable.LRU[string, domain.ProductProfile]
}

// NewMemoryCache creates a new in-memory cache holding at most size profiles for ttl
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 1024
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, domain.ProductProfile](size, nil, ttl),
	}
}

// Get retrieves a copy of the cached profile
func (c *MemoryCache) Get(ctx context.Context, barcode string) (*domain.ProductProfile, error) {
	profile, ok := c.lru.Get(barcode)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return &profile, nil
}

// Set stores a copy of the profile so later changes by the caller don't leak into the cache
func (c *MemoryCache) Set(ctx context.Context, barcode string, profile *domain.ProductProfile) error {
	if profile == nil {
		return nil
	}
	c.lru.Add(barcode, *profile)
	return nil
}

// Delete removes a profile from the cache
func (c *MemoryCache) Delete(ctx context.Context, barcode string) error {
	c.lru.Remove(barcode)
	return nil
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	return c.lru.Len()
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.lru.Purge()
}
