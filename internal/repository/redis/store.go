package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
	"github.com/sharipovr/aws-url-shortener/internal/repository"
)

const (
	fieldOriginalURL = "original_url"
	fieldCreatedAt   = "created_at"
	fieldClickCount  = "click_count"
)

// putScript writes the link hash only when the key is absent.
// Returns 1 when created, 0 when the code is taken.
var putScript = goRedis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], "original_url", ARGV[1], "created_at", ARGV[2], "click_count", 0)
return 1
`)

// incrementScript bumps click_count on an existing hash.
// Returns -1 when the key is absent, otherwise the new count.
var incrementScript = goRedis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], "click_count", ARGV[1])
`)

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Store implements repository.LinkStore with one Redis hash per link,
// keyed "<table>:<short_code>".
type Store struct {
	client *goRedis.Client
	table  string
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, opts Options, table string) (*Store, error) {
	if table == "" {
		return nil, fmt.Errorf("table name cannot be empty")
	}

	client := goRedis.NewClient(&goRedis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Store{client: client, table: table}, nil
}

func (s *Store) key(shortCode string) string {
	return s.table + ":" + shortCode
}

// Put creates a new link unless the short code is taken
func (s *Store) Put(ctx context.Context, shortCode, originalURL string, createdAt time.Time) (*domain.Link, error) {
	createdAt = createdAt.UTC()

	created, err := putScript.Run(ctx, s.client, []string{s.key(shortCode)},
		originalURL, createdAt.Format(time.RFC3339Nano)).Int64()
	if err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}
	if created == 0 {
		return nil, repository.ErrAlreadyExists
	}

	return &domain.Link{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   createdAt,
	}, nil
}

// Get retrieves a link by its short code
func (s *Store) Get(ctx context.Context, shortCode string) (*domain.Link, error) {
	fields, err := s.client.HGetAll(ctx, s.key(shortCode)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	if len(fields) == 0 {
		return nil, repository.ErrNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at of %s: %w", shortCode, err)
	}

	clickCount, err := strconv.ParseInt(fields[fieldClickCount], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse click_count of %s: %w", shortCode, err)
	}

	return &domain.Link{
		ShortCode:   shortCode,
		OriginalURL: fields[fieldOriginalURL],
		CreatedAt:   createdAt,
		ClickCount:  clickCount,
	}, nil
}

// IncrementClicks adds delta to the click count atomically
func (s *Store) IncrementClicks(ctx context.Context, shortCode string, delta int64) error {
	if delta < 1 {
		return repository.ErrInvalidDelta
	}

	count, err := incrementScript.Run(ctx, s.client, []string{s.key(shortCode)}, delta).Int64()
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	if count < 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Close closes the Redis client
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ repository.LinkStore = (*Store)(nil)
