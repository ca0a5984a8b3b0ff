package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sharipovr/aws-url-shortener/internal/cache"
	"github.com/sharipovr/aws-url-shortener/internal/domain"
	"github.com/sharipovr/aws-url-shortener/internal/errx"
	"github.com/sharipovr/aws-url-shortener/internal/metrics"
	"github.com/sharipovr/aws-url-shortener/internal/repository"
	"github.com/sharipovr/aws-url-shortener/internal/shortener"
)

// ErrCodeSpaceExhausted is returned when every generated code was taken
var ErrCodeSpaceExhausted = errors.New("no free short code after retries")

// DefaultMaxAttempts bounds code generation per create request
const DefaultMaxAttempts = 3

// Options holds the optional collaborators of the service
type Options struct {
	MaxAttempts int
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

// linkService implements LinkService
type linkService struct {
	store       repository.LinkStore
	cache       cache.Cache
	generator   shortener.Generator
	clicks      ClickRecorder
	logger      *zap.Logger
	metrics     *metrics.Metrics
	maxAttempts int
	now         func() time.Time
}

// NewLinkService creates a new link service
func NewLinkService(store repository.LinkStore, c cache.Cache, generator shortener.Generator, clicks ClickRecorder, opts Options) LinkService {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewUnregistered()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if c == nil {
		c = cache.NewNop()
	}

	return &linkService{
		store:       store,
		cache:       c,
		generator:   generator,
		clicks:      clicks,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		maxAttempts: opts.MaxAttempts,
		now:         opts.Now,
	}
}

// CreateShortLink creates a new short link
func (s *linkService) CreateShortLink(ctx context.Context, originalURL string) (*domain.Link, error) {
	const op = "service.CreateShortLink"

	if err := ValidateURL(originalURL); err != nil {
		s.metrics.LinksCreatedTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, errx.E(op, errx.Invalid, err)
	}

	createdAt := s.now().UTC()
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		// Shifting the hashed instant by the attempt number yields a new code
		// while the stored creation time stays the same
		shortCode := s.generator.GenerateShortCode(originalURL, createdAt.Add(time.Duration(attempt)))

		link, err := s.store.Put(ctx, shortCode, originalURL, createdAt)
		if err == nil {
			s.cacheLink(ctx, link)
			s.metrics.LinksCreatedTotal.WithLabelValues(metrics.ResultSuccess).Inc()
			return link, nil
		}

		if !errors.Is(err, repository.ErrAlreadyExists) {
			s.metrics.LinksCreatedTotal.WithLabelValues(metrics.ResultError).Inc()
			return nil, errx.E(op, errx.Storage, err)
		}

		s.metrics.CodeCollisionsTotal.Inc()
		s.logger.Warn("short code collision",
			zap.String("short_code", shortCode),
			zap.Int("attempt", attempt+1),
		)
	}

	s.metrics.LinksCreatedTotal.WithLabelValues(metrics.ResultError).Inc()
	return nil, errx.E(op, errx.Storage, ErrCodeSpaceExhausted)
}

// ResolveAndCount retrieves the original URL for a short code and records a click
func (s *linkService) ResolveAndCount(ctx context.Context, shortCode string) (string, error) {
	const op = "service.ResolveAndCount"

	if shortCode == "" {
		s.metrics.RedirectsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return "", errx.E(op, errx.Invalid, ErrShortCodeRequired)
	}

	// Try cache first
	if entry, exists := s.cache.Get(ctx, shortCode); exists {
		s.metrics.CacheLookupsTotal.WithLabelValues(metrics.ResultHit).Inc()
		s.clicks.Record(ctx, shortCode)
		s.metrics.RedirectsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		return entry.OriginalURL, nil
	}
	s.metrics.CacheLookupsTotal.WithLabelValues(metrics.ResultMiss).Inc()

	// Fall back to the store
	link, err := s.getLink(ctx, op, shortCode)
	if err != nil {
		if errx.KindOf(err) == errx.NotFound {
			s.metrics.RedirectsTotal.WithLabelValues(metrics.ResultNotFound).Inc()
		} else {
			s.metrics.RedirectsTotal.WithLabelValues(metrics.ResultError).Inc()
		}
		return "", err
	}

	s.cacheLink(ctx, link)
	s.clicks.Record(ctx, shortCode)
	s.metrics.RedirectsTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	return link.OriginalURL, nil
}

// GetLinkInfo retrieves the stored link without counting a click
func (s *linkService) GetLinkInfo(ctx context.Context, shortCode string) (*domain.Link, error) {
	const op = "service.GetLinkInfo"

	if shortCode == "" {
		return nil, errx.E(op, errx.Invalid, ErrShortCodeRequired)
	}

	return s.getLink(ctx, op, shortCode)
}

func (s *linkService) getLink(ctx context.Context, op, shortCode string) (*domain.Link, error) {
	link, err := s.store.Get(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errx.E(op, errx.NotFound, err)
		}
		return nil, errx.E(op, errx.Storage, err)
	}
	return link, nil
}

func (s *linkService) cacheLink(ctx context.Context, link *domain.Link) {
	entry := &domain.CacheEntry{
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
	}
	if err := s.cache.Set(ctx, link.ShortCode, entry); err != nil {
		// Log error but don't fail the operation
		s.logger.Warn("failed to cache link",
			zap.String("short_code", link.ShortCode),
			zap.Error(err),
		)
	}
}

// Ensure linkService implements LinkService interface
var _ LinkService = (*linkService)(nil)
