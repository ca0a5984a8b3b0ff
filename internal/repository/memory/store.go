package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
	"github.com/sharipovr/aws-url-shortener/internal/repository"
)

// Store implements repository.LinkStore in process memory.
// It is intended for tests and single-instance development.
type Store struct {
	links map[string]*domain.Link
	mutex sync.RWMutex
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		links: make(map[string]*domain.Link),
	}
}

// Put creates a new link unless the short code is taken
func (s *Store) Put(ctx context.Context, shortCode, originalURL string, createdAt time.Time) (*domain.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.links[shortCode]; exists {
		return nil, repository.ErrAlreadyExists
	}

	link := &domain.Link{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   createdAt.UTC(),
	}
	s.links[shortCode] = link

	// Return a copy to prevent external modification
	copied := *link
	return &copied, nil
}

// Get retrieves a link by its short code
func (s *Store) Get(ctx context.Context, shortCode string) (*domain.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	link, exists := s.links[shortCode]
	if !exists {
		return nil, repository.ErrNotFound
	}

	copied := *link
	return &copied, nil
}

// IncrementClicks adds delta to the click count of a link
func (s *Store) IncrementClicks(ctx context.Context, shortCode string, delta int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	if delta < 1 {
		return repository.ErrInvalidDelta
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	link, exists := s.links[shortCode]
	if !exists {
		return repository.ErrNotFound
	}
	link.ClickCount += delta

	return nil
}

// Close is a no-op for the in-memory store
func (s *Store) Close() error {
	return nil
}

// Ensure Store implements the interface
var _ repository.LinkStore = (*Store)(nil)
