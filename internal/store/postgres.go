package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlinks/internal/shortener"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS entries (
	id           BIGSERIAL   PRIMARY KEY,
	code         TEXT        NOT NULL UNIQUE,
	original_url TEXT        NOT NULL,
	visits       BIGINT      NOT NULL DEFAULT 0 CHECK (visits >= 0),
	created_at   TIMESTAMPTZ NOT NULL
)`

// MigratePostgres creates the entries table if it does not exist.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}

	return nil
}

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed entry store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) InsertIfAbsent(ctx context.Context, entry *shortener.Entry) error {
	query := `
		INSERT INTO entries (code, original_url, visits, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		string(entry.Code),
		entry.OriginalURL,
		entry.Visits,
		entry.CreatedAt,
	)
	if err != nil {
		return unavailable("postgres insert", err)
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrCodeExists
	}

	return nil
}

func (p *PostgresStore) Get(ctx context.Context, code shortener.Code) (*shortener.Entry, error) {
	query := `
		SELECT code, original_url, visits, created_at
		FROM entries
		WHERE code = $1
	`

	rows, err := p.pool.Query(ctx, query, string(code))
	if err != nil {
		return nil, unavailable("postgres get", err)
	}

	entry, err := pgx.CollectExactlyOneRow(rows, scanPostgresEntry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, unavailable("postgres get", err)
	}

	return &entry, nil
}

func (p *PostgresStore) IncrementVisits(ctx context.Context, code shortener.Code) (int64, error) {
	query := `UPDATE entries SET visits = visits + 1 WHERE code = $1 RETURNING visits`

	var visits int64

	if err := p.pool.QueryRow(ctx, query, string(code)).Scan(&visits); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shortener.ErrNotFound
		}

		return 0, unavailable("postgres increment", err)
	}

	return visits, nil
}

func (p *PostgresStore) List(ctx context.Context, page shortener.Page) ([]shortener.Entry, error) {
	query := `
		SELECT code, original_url, visits, created_at
		FROM entries
		ORDER BY id
		OFFSET $1
		LIMIT $2
	`

	// NULL means no limit.
	var limit *int
	if page.Limit > 0 {
		limit = &page.Limit
	}

	rows, err := p.pool.Query(ctx, query, max(page.Offset, 0), limit)
	if err != nil {
		return nil, unavailable("postgres list", err)
	}

	entries, err := pgx.CollectRows(rows, scanPostgresEntry)
	if err != nil {
		return nil, unavailable("postgres list", err)
	}

	if entries == nil {
		entries = []shortener.Entry{}
	}

	return entries, nil
}

func scanPostgresEntry(row pgx.CollectableRow) (shortener.Entry, error) {
	var (
		entry shortener.Entry
		code  string
	)

	if err := row.Scan(&code, &entry.OriginalURL, &entry.Visits, &entry.CreatedAt); err != nil {
		return shortener.Entry{}, err
	}

	entry.Code = shortener.Code(code)
	entry.CreatedAt = entry.CreatedAt.UTC()

	return entry, nil
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
