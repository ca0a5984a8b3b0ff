package service

import (
	"context"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
)

// LinkService defines the short link operations
type LinkService interface {
	// CreateShortLink validates originalURL and stores it under a new short code
	CreateShortLink(ctx context.Context, originalURL string) (*domain.Link, error)

	// ResolveAndCount returns the original URL for a short code and records
	// one click without waiting for it to be stored
	ResolveAndCount(ctx context.Context, shortCode string) (string, error)

	// GetLinkInfo returns the stored link including its click count
	GetLinkInfo(ctx context.Context, shortCode string) (*domain.Link, error)
}

// ClickRecorder records one click for a short code without blocking
type ClickRecorder interface {
	Record(ctx context.Context, shortCode string)
}
