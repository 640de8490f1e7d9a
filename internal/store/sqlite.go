package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/serroba/shortlinks/internal/shortener"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	code         TEXT    NOT NULL UNIQUE,
	original_url TEXT    NOT NULL,
	visits       INTEGER NOT NULL DEFAULT 0 CHECK (visits >= 0),
	created_at   INTEGER NOT NULL
);`

// SQLiteStore is an embedded, file-backed shortener.Repository.
// Writes go through a single connection; reads use a separate query-only pool so
// redirects are not queued behind fsynced increments.
type SQLiteStore struct {
	db     *sql.DB
	reader *sql.DB
}

const sqliteReaders = 8

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Every committed increment is fsynced before it returns.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path,
		"busy_timeout(5000)",
		"journal_mode(WAL)",
		"synchronous(FULL)",
	))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection: SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err = db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	reader, err := sql.Open("sqlite", sqliteDSN(path,
		"busy_timeout(5000)",
		"query_only(1)",
	))
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("open sqlite reader: %w", err)
	}

	reader.SetMaxOpenConns(sqliteReaders)
	reader.SetMaxIdleConns(sqliteReaders)

	if err = reader.PingContext(ctx); err != nil {
		_ = reader.Close()
		_ = db.Close()

		return nil, fmt.Errorf("open sqlite reader: %w", err)
	}

	return &SQLiteStore{db: db, reader: reader}, nil
}

// sqliteDSN builds a file: URI. The path is escaped so '?', '#' and '%' stay part of the file name.
func sqliteDSN(path string, pragmas ...string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?" + url.Values{"_pragma": pragmas}.Encode()
}

func (s *SQLiteStore) InsertIfAbsent(ctx context.Context, entry *shortener.Entry) error {
	const q = `
		INSERT INTO entries (code, original_url, visits, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (code) DO NOTHING`

	res, err := s.db.ExecContext(ctx, q,
		string(entry.Code),
		entry.OriginalURL,
		entry.Visits,
		entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return unavailable("sqlite insert", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("sqlite insert", err)
	}

	if n == 0 {
		return shortener.ErrCodeExists
	}

	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, code shortener.Code) (*shortener.Entry, error) {
	const q = `SELECT code, original_url, visits, created_at FROM entries WHERE code = ?`

	entry, err := scanSQLiteEntry(s.reader.QueryRowContext(ctx, q, string(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, unavailable("sqlite get", err)
	}

	return entry, nil
}

func (s *SQLiteStore) IncrementVisits(ctx context.Context, code shortener.Code) (int64, error) {
	const q = `UPDATE entries SET visits = visits + 1 WHERE code = ? RETURNING visits`

	var visits int64
	if err := s.db.QueryRowContext(ctx, q, string(code)).Scan(&visits); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, shortener.ErrNotFound
		}

		return 0, unavailable("sqlite increment", err)
	}

	return visits, nil
}

func (s *SQLiteStore) List(ctx context.Context, page shortener.Page) ([]shortener.Entry, error) {
	const q = `
		SELECT code, original_url, visits, created_at
		FROM entries
		ORDER BY id
		LIMIT ? OFFSET ?`

	limit := -1
	if page.Limit > 0 {
		limit = page.Limit
	}

	rows, err := s.reader.QueryContext(ctx, q, limit, max(page.Offset, 0))
	if err != nil {
		return nil, unavailable("sqlite list", err)
	}
	defer rows.Close()

	entries := []shortener.Entry{}

	for rows.Next() {
		entry, err := scanSQLiteEntry(rows)
		if err != nil {
			return nil, unavailable("sqlite list", err)
		}

		entries = append(entries, *entry)
	}

	if err = rows.Err(); err != nil {
		return nil, unavailable("sqlite list", err)
	}

	return entries, nil
}

// Ping checks both the writer and the reader connections.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return errors.Join(s.db.PingContext(ctx), s.reader.PingContext(ctx))
}

// Shutdown closes the database.
func (s *SQLiteStore) Shutdown() error {
	return errors.Join(s.reader.Close(), s.db.Close())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteEntry(row rowScanner) (*shortener.Entry, error) {
	var (
		entry     shortener.Entry
		code      string
		createdAt int64
	)

	if err := row.Scan(&code, &entry.OriginalURL, &entry.Visits, &createdAt); err != nil {
		return nil, err
	}

	entry.Code = shortener.Code(code)
	entry.CreatedAt = time.Unix(0, createdAt).UTC()

	return &entry, nil
}

// Compile-time check.
var _ shortener.Repository = (*SQLiteStore)(nil)
