package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/idea-research/internal/model"
)

var pgNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := NewPostgres(mock)
	s.now = func() time.Time { return pgNow }
	return s, mock
}

var runColumns = []string{"id", "idea", "state", "progress", "result", "created_at", "updated_at"}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS runs`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs \(id, idea, state, progress, created_at, updated_at\)`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "init", 0, pgNow, pgNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), model.Idea{Name: "Ledgerly"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.StateInit, run.State)
	assert.Equal(t, pgNow, run.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunState(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET state = \$1, progress = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs("analysis", 40, pgNow, "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateRunState(context.Background(), "run-1", model.StateAnalysis, 40))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunState_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET state`).
		WithArgs("analysis", 40, pgNow, "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunState(context.Background(), "missing", model.StateAnalysis, 40)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET state = \$1, progress = \$2, result = \$3`).
		WithArgs("complete", 100, pgxmock.AnyArg(), pgNow, "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", model.StateComplete, 100, &model.RunResult{Partial: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, idea, state, progress, result, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows(runColumns).
		AddRow("run-1", []byte(`{"name":"Ledgerly","industry":"fintech"}`), "complete", 100,
			[]byte(`{"partial":true,"errors":["[PARTIAL] scraping: thin"]}`), pgNow, pgNow)
	mock.ExpectQuery(`FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "Ledgerly", run.Idea.Name)
	assert.Equal(t, model.StateComplete, run.State)
	assert.Equal(t, 100, run.Progress)
	require.NotNil(t, run.Result)
	assert.True(t, run.Result.Partial)
	assert.Equal(t, []string{"[PARTIAL] scraping: thin"}, run.Result.Errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_FilterByState(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows(runColumns).
		AddRow("run-2", []byte(`{"name":"B"}`), "failed", 10, []byte(`{}`), pgNow, pgNow).
		AddRow("run-1", []byte(`{"name":"A"}`), "failed", 20, []byte(`{}`), pgNow, pgNow)
	mock.ExpectQuery(`FROM runs WHERE state = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("failed", 100, 0).
		WillReturnRows(rows)

	runs, err := s.ListRuns(context.Background(), RunFilter{State: model.StateFailed})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "A", runs[1].Idea.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_NoFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM runs ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(5, 10).
		WillReturnRows(pgxmock.NewRows(runColumns))

	runs, err := s.ListRuns(context.Background(), RunFilter{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
