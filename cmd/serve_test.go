package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/monitoring"
	"github.com/sells-group/idea-research/internal/state"
	"github.com/sells-group/idea-research/internal/store"
	"github.com/sells-group/idea-research/internal/workflow"
)

// newTestAPI serves a SQLite-backed API whose controller has no stages,
// so accepted runs complete immediately.
func newTestAPI(t *testing.T) (*api, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))

	a := newAPI(context.Background(), st, workflow.NewController(st))
	t.Cleanup(func() {
		a.wait()
		_ = st.Close()
	})
	return a, st
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	a, _ := newTestAPI(t)

	rr := doRequest(t, a.routes(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestCreateRun_AcceptedAndCompletes(t *testing.T) {
	a, _ := newTestAPI(t)
	h := a.routes()

	rr := doRequest(t, h, http.MethodPost, "/runs", map[string]any{
		"name":     "Payments Hub",
		"industry": "fintech",
		"sources":  []string{"https://a.test/payments"},
	})
	require.Equal(t, http.StatusAccepted, rr.Code)

	var accepted map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &accepted))
	assert.Equal(t, "accepted", accepted["status"])
	id := accepted["id"]
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		rr := doRequest(t, h, http.MethodGet, "/runs/"+id, nil)
		if rr.Code != http.StatusOK {
			return false
		}
		var run model.Run
		if err := json.Unmarshal(rr.Body.Bytes(), &run); err != nil {
			return false
		}
		return run.State == model.StateComplete
	}, 5*time.Second, 20*time.Millisecond)

	rr = doRequest(t, h, http.MethodGet, "/runs/"+id, nil)
	var run model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &run))
	assert.Equal(t, "Payments Hub", run.Idea.Name)
	assert.Equal(t, "FinTech", run.Idea.IndustryCategory)
	assert.Equal(t, 100, run.Progress)
}

func TestCreateRun_BadRequests(t *testing.T) {
	a, _ := newTestAPI(t)
	h := a.routes()

	req := httptest.NewRequest(http.MethodPost, "/runs", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")

	rr = doRequest(t, h, http.MethodPost, "/runs", map[string]any{"industry": "fintech"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "name is required")

	rr = doRequest(t, h, http.MethodPost, "/runs", map[string]any{
		"name": "X", "industry": "fintech", "analysis_type": "astrology",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown analysis type")
}

func TestGetRun_NotFound(t *testing.T) {
	a, _ := newTestAPI(t)

	rr := doRequest(t, a.routes(), http.MethodGet, "/runs/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "run not found")
}

func TestListRuns(t *testing.T) {
	a, st := newTestAPI(t)
	h := a.routes()
	ctx := context.Background()

	rr := doRequest(t, h, http.MethodGet, "/runs", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())

	first, err := st.CreateRun(ctx, model.Idea{Name: "First"})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, model.Idea{Name: "Second"})
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, first.ID, model.StateFailed, 20, &model.RunResult{}))

	rr = doRequest(t, h, http.MethodGet, "/runs", nil)
	var all []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rr = doRequest(t, h, http.MethodGet, "/runs?state=failed", nil)
	var failed []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &failed))
	require.Len(t, failed, 1)
	assert.Equal(t, first.ID, failed[0].ID)

	rr = doRequest(t, h, http.MethodGet, "/runs?limit=1", nil)
	var limited []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &limited))
	assert.Len(t, limited, 1)

	rr = doRequest(t, h, http.MethodGet, "/runs?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	a, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/runs", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	a.routes().ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

// --- runExecutor mock ---

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Start(ctx context.Context, idea model.Idea) (*model.Run, error) {
	args := m.Called(ctx, idea)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockRunner) Execute(ctx context.Context, run *model.Run) (*model.Run, *state.RunState, error) {
	args := m.Called(ctx, run)
	return run, nil, args.Error(0)
}

func TestCreateRun_StartFailure(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Start", mock.Anything, mock.Anything).Return(nil, eris.New("db down"))
	a := newAPI(context.Background(), nil, runner)

	rr := doRequest(t, a.routes(), http.MethodPost, "/runs", map[string]any{"name": "X", "industry": "saas"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	runner.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestCreateRun_ExecutesInBackground(t *testing.T) {
	runner := new(mockRunner)
	run := &model.Run{ID: "run-9", State: model.StateInit}
	runner.On("Start", mock.Anything, mock.Anything).Return(run, nil)
	runner.On("Execute", mock.Anything, run).Return(workflow.ErrRunFailed)
	a := newAPI(context.Background(), nil, runner)

	rr := doRequest(t, a.routes(), http.MethodPost, "/runs", map[string]any{"name": "X", "industry": "saas"})
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Contains(t, rr.Body.String(), "run-9")

	a.wait()
	runner.AssertExpectations(t)
}

func TestMetricsEndpoint(t *testing.T) {
	a, st := newTestAPI(t)
	h := a.routes()
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.Idea{Name: "Metered"})
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, run.ID, model.StateFailed, 20, &model.RunResult{DurationMs: 500}))

	rr := doRequest(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var snap monitoring.MetricsSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.RunsTotal)
	assert.Equal(t, 1, snap.RunsFailed)
	assert.InDelta(t, 1.0, snap.FailRate, 0.0001)
	assert.Equal(t, 24, snap.LookbackHours)

	rr = doRequest(t, h, http.MethodGet, "/metrics?lookback_hours=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
