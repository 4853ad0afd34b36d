package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/sells-group/idea-research/internal/db"
	"github.com/sells-group/idea-research/internal/model"
)

// PostgresStore implements Store on a shared pgx pool.
type PostgresStore struct {
	pool db.Pool
	now  func() time.Time
}

// NewPostgres wraps an open pool. Call Migrate once before first use.
func NewPostgres(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	idea       JSONB NOT NULL,
	state      TEXT NOT NULL DEFAULT 'init',
	progress   INTEGER NOT NULL DEFAULT 0,
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, idea model.Idea) (*model.Run, error) {
	id := uuid.New().String()
	now := s.now()

	ideaJSON, err := json.Marshal(idea)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal idea")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, idea, state, progress, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, ideaJSON, string(model.StateInit), 0, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Idea:      idea,
		State:     model.StateInit,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunState(ctx context.Context, runID string, state model.PipelineState, progress int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET state = $1, progress = $2, updated_at = $3 WHERE id = $4`,
		string(state), progress, s.now(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run state %s", runID)
	}
	return checkTag(tag, runID)
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, state model.PipelineState, progress int, result *model.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET state = $1, progress = $2, result = $3, updated_at = $4 WHERE id = $5`,
		string(state), progress, resultJSON, s.now(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	return checkTag(tag, runID)
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, idea, state, progress, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	r, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, idea, state, progress, result, created_at, updated_at FROM runs`
	var args []any

	if filter.State != "" {
		args = append(args, string(filter.State))
		query += ` WHERE state = $1`
	}
	args = append(args, filter.limit(), filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func checkTag(tag pgconn.CommandTag, id string) error {
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", id)
	}
	return nil
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var state string
	var ideaJSON, resultJSON []byte

	if err := row.Scan(&r.ID, &ideaJSON, &state, &r.Progress, &resultJSON, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.State = model.PipelineState(state)

	if err := json.Unmarshal(ideaJSON, &r.Idea); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal idea")
	}
	if len(resultJSON) > 0 {
		r.Result = &model.RunResult{}
		if err := json.Unmarshal(resultJSON, r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &r, nil
}
