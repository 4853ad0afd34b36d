package cache

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
`

// SQLite is a Cache persisted in a SQLite file. Expiry times are stored as
// unix milliseconds; 0 means the entry never expires.
type SQLite struct {
	db   *sql.DB
	opts options
}

// NewSQLite opens (or creates) the cache database at dsn and migrates it.
func NewSQLite(ctx context.Context, dsn string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "cache: sqlite open")
	}
	// One connection keeps the pragmas in effect and serializes writers.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "cache: sqlite exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "cache: sqlite migrate")
	}
	return &SQLite{db: db, opts: applyOptions(opts)}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ? AND (expires_at = 0 OR expires_at > ?)`,
		key, s.opts.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "cache: sqlite get %s", key)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	var expires int64
	if exp := s.opts.expiry(); !exp.IsZero() {
		expires = exp.UnixMilli()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at, expires_at = excluded.expires_at`,
		key, value, s.opts.now().UnixMilli(), expires,
	)
	return eris.Wrapf(err, "cache: sqlite set %s", key)
}

// PurgeExpired deletes entries whose expiry has passed.
func (s *SQLite) PurgeExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at != 0 AND expires_at <= ?`,
		s.opts.now().UnixMilli(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "cache: sqlite purge")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "cache: sqlite purge rows affected")
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
