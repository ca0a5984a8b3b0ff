package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
)

var (
	// ErrNotFound is returned when no link is stored under a short code
	ErrNotFound = errors.New("short code not found")

	// ErrAlreadyExists is returned by Put when the short code is taken
	ErrAlreadyExists = errors.New("short code already exists")

	// ErrInvalidDelta is returned by IncrementClicks for a delta below one
	ErrInvalidDelta = errors.New("click delta must be positive")
)

// LinkStore defines the persistence operations for links.
// Every backend must behave identically for these operations.
type LinkStore interface {
	// Put creates a new link with a zero click count. It never overwrites an
	// existing short code and returns ErrAlreadyExists instead.
	Put(ctx context.Context, shortCode, originalURL string, createdAt time.Time) (*domain.Link, error)

	// Get retrieves a link by its short code
	Get(ctx context.Context, shortCode string) (*domain.Link, error)

	// IncrementClicks atomically adds delta to the click count of a link
	IncrementClicks(ctx context.Context, shortCode string, delta int64) error

	// Close releases the underlying connection
	Close() error
}
