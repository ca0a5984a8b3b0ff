package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
)

// LinkStore is a mock implementation of repository.LinkStore
type LinkStore struct {
	mock.Mock
}

// Put creates a new link
func (m *LinkStore) Put(ctx context.Context, shortCode, originalURL string, createdAt time.Time) (*domain.Link, error) {
	args := m.Called(ctx, shortCode, originalURL, createdAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// Get retrieves a link by its short code
func (m *LinkStore) Get(ctx context.Context, shortCode string) (*domain.Link, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// IncrementClicks adds delta to the click count of a link
func (m *LinkStore) IncrementClicks(ctx context.Context, shortCode string, delta int64) error {
	args := m.Called(ctx, shortCode, delta)
	return args.Error(0)
}

// Close closes the store
func (m *LinkStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
