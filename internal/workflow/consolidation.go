package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/consolidate"
	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/state"
)

// Consolidation merges the three analysis outcomes into an assessment. The
// assessment, and the consolidation stage itself, are partial whenever any
// earlier stage degraded.
type Consolidation struct {
	consolidator *consolidate.Consolidator
}

// NewConsolidation creates the consolidation handler.
func NewConsolidation(c *consolidate.Consolidator) *Consolidation {
	return &Consolidation{consolidator: c}
}

func (h *Consolidation) Stage() model.PipelineState { return model.StateConsolidation }

func (h *Consolidation) Handle(_ context.Context, rs *state.RunState) {
	partial := rs.HasPartialData()
	if partial {
		rs.MarkPartial(model.StageConsolidation)
	}
	assessment := h.consolidator.Consolidate(consolidate.Input{
		Idea:         ideaOf(rs),
		Analyses:     analysesOf(rs),
		Partial:      partial,
		Degradations: degradations(rs),
	})
	if err := rs.AddData(state.KeyConsolidatedOutput, assessment); err != nil {
		runLogger(rs).Warn("workflow: store assessment", zap.Error(err))
	}
}

func lookupOutcome[T any](rs *state.RunState, key string, def func() T) model.Outcome[T] {
	if o, ok := state.Lookup[model.Outcome[T]](rs, key); ok {
		return o
	}
	return model.Defaulted(def(), "missing")
}

func degradations(rs *state.RunState) []model.Degradation {
	var out []model.Degradation
	for _, f := range rs.Failures() {
		if f.IsPartial() {
			out = append(out, model.Degradation{Stage: f.Stage, Reason: f.Message})
		}
	}
	return out
}

// analysesOf collects the stored analysis outcomes.
func analysesOf(rs *state.RunState) model.Analyses {
	return model.Analyses{
		Financial:   lookupOutcome(rs, state.KeyFinancialAnalysis, model.DefaultFinancialAnalysis),
		Competitive: lookupOutcome(rs, state.KeyCompetitiveAnalysis, model.DefaultCompetitiveAnalysis),
		Market:      lookupOutcome(rs, state.KeyMarketAnalysis, model.DefaultMarketAnalysis),
	}
}
