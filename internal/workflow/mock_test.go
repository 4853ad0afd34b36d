package workflow

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/idea-research/internal/analysis"
	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/report"
	"github.com/sells-group/idea-research/internal/scrape"
	"github.com/sells-group/idea-research/internal/search"
	"github.com/sells-group/idea-research/internal/state"
	"github.com/sells-group/idea-research/internal/store"
)

// --- Scraper stub ---

// pageScraper serves fixed text per URL and fails every other URL.
type pageScraper map[string]string

func (p pageScraper) Name() string         { return "stub" }
func (p pageScraper) Supports(string) bool { return true }
func (p pageScraper) Scrape(_ context.Context, url string) (*scrape.Result, error) {
	text, ok := p[url]
	if !ok {
		return nil, eris.Errorf("stub: no page for %s", url)
	}
	return &scrape.Result{
		Page:   model.Page{URL: url, Title: url, Text: text, StatusCode: 200},
		Source: "stub",
	}, nil
}

// --- SourceFinder mock ---

type mockFinder struct {
	mock.Mock
}

func (m *mockFinder) Find(ctx context.Context, idea model.Idea) ([]search.Hit, error) {
	args := m.Called(ctx, idea)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]search.Hit), args.Error(1)
}

// --- Store mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateRun(ctx context.Context, idea model.Idea) (*model.Run, error) {
	args := m.Called(ctx, idea)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) UpdateRunState(ctx context.Context, runID string, st model.PipelineState, progress int) error {
	return m.Called(ctx, runID, st, progress).Error(0)
}

func (m *mockStore) CompleteRun(ctx context.Context, runID string, st model.PipelineState, progress int, result *model.RunResult) error {
	return m.Called(ctx, runID, st, progress, result).Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Run), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockStore) Close() error                      { return m.Called().Error(0) }

// --- Analyzer funcs ---

type financialFunc func(context.Context, analysis.Input) (model.FinancialAnalysis, error)

func (f financialFunc) Analyze(ctx context.Context, in analysis.Input) (model.FinancialAnalysis, error) {
	return f(ctx, in)
}

type competitiveFunc func(context.Context, analysis.Input) (model.CompetitiveAnalysis, error)

func (f competitiveFunc) Analyze(ctx context.Context, in analysis.Input) (model.CompetitiveAnalysis, error) {
	return f(ctx, in)
}

type marketFunc func(context.Context, analysis.Input) (model.MarketAnalysis, error)

func (f marketFunc) Analyze(ctx context.Context, in analysis.Input) (model.MarketAnalysis, error) {
	return f(ctx, in)
}

// --- Renderer func ---

type rendererFunc func(context.Context, report.Document) ([]report.Artifact, error)

func (f rendererFunc) Render(ctx context.Context, doc report.Document) ([]report.Artifact, error) {
	return f(ctx, doc)
}

// --- Recording handler ---

// recordingHandler notes the pipeline state it observed while running.
type recordingHandler struct {
	stage model.PipelineState
	seen  *[]model.PipelineState
	then  func(rs *state.RunState)
}

func (h recordingHandler) Stage() model.PipelineState { return h.stage }

func (h recordingHandler) Handle(_ context.Context, rs *state.RunState) {
	*h.seen = append(*h.seen, rs.Current())
	if h.then != nil {
		h.then(rs)
	}
}
