package workflow

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/idea-research/internal/analysis"
	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/state"
)

const notRequested = "not requested"

// analysisCount is the number of sub-analyses the handler runs.
const analysisCount = 3

// Analysis runs the financial, competitive and market analyzers
// concurrently. Each runs isolated: an error or panic replaces that result
// with its default and degrades the run. The run ends only when all three
// analyses ran and all three failed.
type Analysis struct {
	financial   analysis.FinancialAnalyzer
	competitive analysis.CompetitiveAnalyzer
	market      analysis.MarketAnalyzer
}

// NewAnalysis creates the analysis handler.
func NewAnalysis(f analysis.FinancialAnalyzer, c analysis.CompetitiveAnalyzer, m analysis.MarketAnalyzer) *Analysis {
	return &Analysis{financial: f, competitive: c, market: m}
}

func (h *Analysis) Stage() model.PipelineState { return model.StateAnalysis }

func (h *Analysis) Handle(ctx context.Context, rs *state.RunState) {
	idea := ideaOf(rs)
	ex, ok := state.Lookup[model.Outcome[model.Extraction]](rs, state.KeyExtractedData)
	if !ok {
		ex = model.Defaulted(model.EmptyExtraction(), "no extraction available")
	}
	in := analysis.Input{Idea: idea, Extraction: ex.Value}

	requested := func(d model.AnalysisDomain) bool {
		return len(idea.Domains) == 0 || slices.Contains(idea.Domains, d)
	}

	runFin := requested(model.DomainFinancial)
	runComp := requested(model.DomainCompetitive)
	runMkt := requested(model.DomainMarket)

	var (
		fin     model.FinancialAnalysis
		comp    model.CompetitiveAnalysis
		mkt     model.MarketAnalysis
		finErr  error
		compErr error
		mktErr  error
	)

	// Each task writes only its own slot and never returns an error, so a
	// failing analyzer cannot cancel its siblings.
	var g errgroup.Group
	if runFin {
		g.Go(func() error {
			fin, finErr = safeCall(func() (model.FinancialAnalysis, error) { return h.financial.Analyze(ctx, in) })
			return nil
		})
	}
	if runComp {
		g.Go(func() error {
			comp, compErr = safeCall(func() (model.CompetitiveAnalysis, error) { return h.competitive.Analyze(ctx, in) })
			return nil
		})
	}
	if runMkt {
		g.Go(func() error {
			mkt, mktErr = safeCall(func() (model.MarketAnalysis, error) { return h.market.Analyze(ctx, in) })
			return nil
		})
	}
	_ = g.Wait()

	ran, failed := 0, 0
	finOut := settle(rs, model.StageFinancial, runFin, fin, finErr, model.DefaultFinancialAnalysis, &ran, &failed)
	compOut := settle(rs, model.StageCompetitive, runComp, comp, compErr, model.DefaultCompetitiveAnalysis, &ran, &failed)
	mktOut := settle(rs, model.StageMarket, runMkt, mkt, mktErr, model.DefaultMarketAnalysis, &ran, &failed)

	rs.SubstituteDefault(state.KeyFinancialAnalysis, finOut)
	rs.SubstituteDefault(state.KeyCompetitiveAnalysis, compOut)
	rs.SubstituteDefault(state.KeyMarketAnalysis, mktOut)

	runLogger(rs).Info("workflow: analysis complete", zap.Int("ran", ran), zap.Int("failed", failed))

	switch {
	case failed == analysisCount:
		fail(rs, model.StageAnalysis, fmt.Sprintf("all %d analyses failed", failed))
	case failed > 0:
		warn(rs, model.StageAnalysis, fmt.Sprintf("%d of %d analyses replaced with defaults", failed, ran))
	}
}

// settle turns one analyzer's result into an Outcome, recording a
// degradation when it failed.
func settle[T any](rs *state.RunState, stage model.Stage, ran bool, v T, err error, def func() T, total, failed *int) model.Outcome[T] {
	if !ran {
		return model.Defaulted(def(), notRequested)
	}
	*total++
	if err != nil {
		*failed++
		warn(rs, stage, fmt.Sprintf("%s analysis failed: %v", stage, err))
		return model.Defaulted(def(), err.Error())
	}
	return model.Computed(v)
}
