// Package workflow drives a research run through scraping, extraction,
// analysis, consolidation and reporting. Each stage handler classifies its
// own failures into the run state; the controller only inspects the
// resulting pipeline state.
package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/state"
)

// Handler executes one pipeline stage against the run state.
type Handler interface {
	// Stage is the pipeline state entered while the handler runs.
	Stage() model.PipelineState
	// Handle does the stage's work. It records degradations with
	// RunState.Warn and run-ending problems with RunState.Fail.
	Handle(ctx context.Context, rs *state.RunState)
}

func runLogger(rs *state.RunState) *zap.Logger {
	return zap.L().With(zap.String("run_id", rs.ID()))
}

// warn logs and records a partial degradation.
func warn(rs *state.RunState, stage model.Stage, msg string) {
	runLogger(rs).Warn("workflow: stage degraded", zap.String("stage", string(stage)), zap.String("reason", msg))
	rs.Warn(stage, msg)
}

// fail logs and records a hard failure.
func fail(rs *state.RunState, stage model.Stage, msg string) {
	runLogger(rs).Error("workflow: stage failed", zap.String("stage", string(stage)), zap.String("reason", msg))
	rs.Fail(stage, msg)
}

func ideaOf(rs *state.RunState) model.Idea {
	idea, _ := state.Lookup[model.Idea](rs, state.KeyIdea)
	return idea
}
