package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/idea-research/internal/db"
)

const postgresMigration = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
`

var postgresUpsert = db.UpsertSQL("cache_entries",
	[]string{"key", "value", "created_at", "expires_at"},
	[]string{"key"},
)

// Postgres is a Cache shared between workers through a Postgres table.
type Postgres struct {
	pool db.Pool
	opts options
}

// NewPostgres wraps an open pool. Call Migrate once before first use.
func NewPostgres(pool db.Pool, opts ...Option) *Postgres {
	return &Postgres{pool: pool, opts: applyOptions(opts)}
}

// Migrate creates the cache table if needed.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "cache: postgres migrate")
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM cache_entries WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`,
		key, p.opts.now(),
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "cache: postgres get %s", key)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	var expires *time.Time
	if exp := p.opts.expiry(); !exp.IsZero() {
		expires = &exp
	}
	_, err := p.pool.Exec(ctx, postgresUpsert, key, value, p.opts.now(), expires)
	return eris.Wrapf(err, "cache: postgres set %s", key)
}

// PurgeExpired deletes entries whose expiry has passed.
func (p *Postgres) PurgeExpired(ctx context.Context) (int, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at <= $1`,
		p.opts.now(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "cache: postgres purge")
	}
	return int(tag.RowsAffected()), nil
}
