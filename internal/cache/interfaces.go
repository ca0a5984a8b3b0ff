package cache

import (
	"context"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
)

// Cache holds short code to URL mappings in front of the link store.
// Mappings never change once written, so entries need no invalidation.
type Cache interface {
	// Get retrieves a cache entry by short code
	Get(ctx context.Context, shortCode string) (*domain.CacheEntry, bool)

	// Set stores a cache entry
	Set(ctx context.Context, shortCode string, entry *domain.CacheEntry) error

	// Close releases the cache
	Close() error
}

// Nop is a Cache that stores nothing
type Nop struct{}

// NewNop returns a cache for deployments with caching disabled
func NewNop() Nop {
	return Nop{}
}

// Get always misses
func (Nop) Get(context.Context, string) (*domain.CacheEntry, bool) {
	return nil, false
}

// Set discards the entry
func (Nop) Set(context.Context, string, *domain.CacheEntry) error {
	return nil
}

// Close does nothing
func (Nop) Close() error {
	return nil
}

var _ Cache = Nop{}
