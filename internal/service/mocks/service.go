package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
)

// LinkService is a mock implementation of service.LinkService
type LinkService struct {
	mock.Mock
}

// CreateShortLink creates a new short link
func (m *LinkService) CreateShortLink(ctx context.Context, originalURL string) (*domain.Link, error) {
	args := m.Called(ctx, originalURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// ResolveAndCount retrieves the original URL and records a click
func (m *LinkService) ResolveAndCount(ctx context.Context, shortCode string) (string, error) {
	args := m.Called(ctx, shortCode)
	return args.String(0), args.Error(1)
}

// GetLinkInfo retrieves the stored link
func (m *LinkService) GetLinkInfo(ctx context.Context, shortCode string) (*domain.Link, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// ClickRecorder is a mock implementation of service.ClickRecorder
type ClickRecorder struct {
	mock.Mock
}

// Record records one click
func (m *ClickRecorder) Record(ctx context.Context, shortCode string) {
	m.Called(ctx, shortCode)
}
