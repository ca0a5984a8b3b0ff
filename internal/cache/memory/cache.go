package memory

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/sharipovr/aws-url-shortener/internal/cache"
	"github.com/sharipovr/aws-url-shortener/internal/domain"
)

// Cache implements cache.Cache as a size bounded LRU
type Cache struct {
	capacity int
	items    map[string]*list.Element
	order    *list.List // front is most recently used
	mutex    sync.Mutex
}

type item struct {
	shortCode string
	entry     domain.CacheEntry
}

// New creates a new in-memory LRU cache holding at most capacity entries
func New(capacity int) (*Cache, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}

	return &Cache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}, nil
}

// Get retrieves a cache entry by short code
func (c *Cache) Get(ctx context.Context, shortCode string) (*domain.CacheEntry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elem, exists := c.items[shortCode]
	if !exists {
		return nil, false
	}
	c.order.MoveToFront(elem)

	// Return a copy to prevent external modification
	entry := elem.Value.(*item).entry
	return &entry, true
}

// Set stores a cache entry, evicting the least recently used one when full
func (c *Cache) Set(ctx context.Context, shortCode string, entry *domain.CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if elem, exists := c.items[shortCode]; exists {
		elem.Value.(*item).entry = *entry
		c.order.MoveToFront(elem)
		return nil
	}

	c.items[shortCode] = c.order.PushFront(&item{shortCode: shortCode, entry: *entry})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*item).shortCode)
	}

	return nil
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.order.Len()
}

// Close drops all entries
func (c *Cache) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	return nil
}

// Ensure Cache implements the interface
var _ cache.Cache = (*Cache)(nil)
