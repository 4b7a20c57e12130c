// Package cache holds the invoice listing cache and the invalidators run
// after every committed invoice write.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	goCache "github.com/patrickmn/go-cache"
)

const (
	DefaultListingTTL      = 5 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

//go:generate mockgen -destination=mocks/mock_invalidator.go -package=mocks . Invalidator

// Invalidator marks the cached representation stored under key as stale.
type Invalidator interface {
	Invalidate(ctx context.Context, key string) error
}

// ListingCache is a process-local cache of rendered listings. Every
// invalidation bumps a generation so readers that loaded rows before it
// cannot store them after it.
type ListingCache struct {
	cache *goCache.Cache
	ttl   time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewListingCache returns a ListingCache using the default TTLs.
func NewListingCache() *ListingCache {
	return NewListingCacheWithTTL(DefaultListingTTL)
}

func NewListingCacheWithTTL(ttl time.Duration) *ListingCache {
	return &ListingCache{
		cache: goCache.New(ttl, DefaultCleanupInterval),
		ttl:   ttl,
	}
}

func (c *ListingCache) Get(key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *ListingCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Set(key, value, c.ttl)
}

// Generation returns the current invalidation generation. Capture it
// before loading the value later passed to SetIfCurrent.
func (c *ListingCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// SetIfCurrent stores value only if no invalidation ran since generation
// was captured. It reports whether the value was stored.
func (c *ListingCache) SetIfCurrent(key string, value interface{}, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return false
	}
	c.cache.Set(key, value, c.ttl)
	return true
}

// Invalidate drops every entry under key, including paged variants
// stored as key+"?"+suffix.
func (c *ListingCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.cache.Delete(key)
	prefix := key + "?"
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
	return nil
}

// Chain runs every invalidator in order and joins their errors.
type Chain []Invalidator

func (c Chain) Invalidate(ctx context.Context, key string) error {
	var errs []error
	for _, inv := range c {
		if inv == nil {
			continue
		}
		if err := inv.Invalidate(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
