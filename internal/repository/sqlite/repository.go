package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
	"github.com/sharipovr/aws-url-shortener/internal/repository"
)

// Store implements repository.LinkStore using SQLite
type Store struct {
	db    *sql.DB
	table string // quoted identifier
}

// New opens (creating if needed) the SQLite database at databasePath and
// migrates the links table named table.
func New(databasePath, table string) (*Store, error) {
	if table == "" {
		return nil, fmt.Errorf("table name cannot be empty")
	}

	db, err := sql.Open("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serialises writers so concurrent increments queue
	// instead of failing with "database is locked".
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	store := &Store{
		db:    db,
		table: quoteIdent(table),
	}

	if err := store.runMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Put creates a new link unless the short code is taken
func (s *Store) Put(ctx context.Context, shortCode, originalURL string, createdAt time.Time) (*domain.Link, error) {
	createdAt = createdAt.UTC()

	query := fmt.Sprintf(`INSERT INTO %s (short_code, original_url, created_at, click_count)
		VALUES (?, ?, ?, 0)
		ON CONFLICT (short_code) DO NOTHING`, s.table)

	result, err := s.db.ExecContext(ctx, query, shortCode, originalURL, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}
	if rows == 0 {
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
	query := fmt.Sprintf(`SELECT short_code, original_url, created_at, click_count
		FROM %s WHERE short_code = ?`, s.table)

	var (
		link      domain.Link
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, shortCode).
		Scan(&link.ShortCode, &link.OriginalURL, &createdAt, &link.ClickCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	link.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at of %s: %w", shortCode, err)
	}

	return &link, nil
}

// IncrementClicks adds delta to the click count in a single UPDATE statement
func (s *Store) IncrementClicks(ctx context.Context, shortCode string, delta int64) error {
	if delta < 1 {
		return repository.ErrInvalidDelta
	}

	query := fmt.Sprintf(`UPDATE %s SET click_count = click_count + ? WHERE short_code = ?`, s.table)

	result, err := s.db.ExecContext(ctx, query, delta, shortCode)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// quoteIdent quotes a table name so values such as "url-shortener" are usable
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Ensure Store implements the interface
var _ repository.LinkStore = (*Store)(nil)
