package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
	"github.com/sharipovr/aws-url-shortener/internal/repository"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements repository.LinkStore using PostgreSQL
type Store struct {
	pool  *pgxpool.Pool
	table string // sanitized identifier
}

// New connects to PostgreSQL. The links table is expected to exist unless
// Migrate is called.
func New(ctx context.Context, connString, table string) (*Store, error) {
	if table == "" {
		return nil, fmt.Errorf("table name cannot be empty")
	}

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
	}, nil
}

// Migrate creates the links table if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := migrationsFS.ReadFile(path.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		query := strings.ReplaceAll(string(content), "{{table}}", s.table)
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return nil
}

// Put creates a new link unless the short code is taken
func (s *Store) Put(ctx context.Context, shortCode, originalURL string, createdAt time.Time) (*domain.Link, error) {
	query := fmt.Sprintf(`INSERT INTO %s (short_code, original_url, created_at, click_count)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (short_code) DO NOTHING
		RETURNING created_at`, s.table)

	var stored time.Time
	err := s.pool.QueryRow(ctx, query, shortCode, originalURL, createdAt.UTC()).Scan(&stored)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	return &domain.Link{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   stored.UTC(),
	}, nil
}

// Get retrieves a link by its short code
func (s *Store) Get(ctx context.Context, shortCode string) (*domain.Link, error) {
	query := fmt.Sprintf(`SELECT short_code, original_url, created_at, click_count
		FROM %s WHERE short_code = $1`, s.table)

	var link domain.Link
	err := s.pool.QueryRow(ctx, query, shortCode).
		Scan(&link.ShortCode, &link.OriginalURL, &link.CreatedAt, &link.ClickCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	link.CreatedAt = link.CreatedAt.UTC()

	return &link, nil
}

// IncrementClicks adds delta to the click count in a single UPDATE statement
func (s *Store) IncrementClicks(ctx context.Context, shortCode string, delta int64) error {
	if delta < 1 {
		return repository.ErrInvalidDelta
	}

	query := fmt.Sprintf(`UPDATE %s SET click_count = click_count + $2 WHERE short_code = $1`, s.table)

	tag, err := s.pool.Exec(ctx, query, shortCode, delta)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Store implements the interface
var _ repository.LinkStore = (*Store)(nil)
