package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/report"
	"github.com/sells-group/idea-research/internal/state"
)

// ReportRenderer renders a document in one or more formats.
type ReportRenderer interface {
	Render(ctx context.Context, doc report.Document) ([]report.Artifact, error)
}

// Reporting validates the assessment and writes the report artifacts. A
// rendering problem degrades the run but does not fail it.
type Reporting struct {
	renderer ReportRenderer
	now      func() time.Time
}

// NewReporting creates the reporting handler.
func NewReporting(r ReportRenderer) *Reporting {
	return &Reporting{renderer: r, now: time.Now}
}

func (h *Reporting) Stage() model.PipelineState { return model.StateReporting }

func (h *Reporting) Handle(ctx context.Context, rs *state.RunState) {
	assessment, ok := state.Lookup[model.Assessment](rs, state.KeyConsolidatedOutput)
	if !ok {
		warn(rs, model.StageReporting, "no consolidated output to report")
		return
	}

	snap := rs.Snapshot()
	doc := report.Document{
		RunID:        rs.ID(),
		Idea:         ideaOf(rs),
		Assessment:   assessment,
		Analyses:     analysesOf(rs),
		PartialFlags: snap.Partial,
		Errors:       rs.Errors(),
		GeneratedAt:  h.now().UTC(),
	}

	artifacts, err := h.renderer.Render(ctx, doc)
	if err != nil {
		warn(rs, model.StageReporting, "report rendering failed: "+err.Error())
	}
	if len(artifacts) > 0 {
		if err := rs.AddData(state.KeyReportArtifacts, artifacts); err != nil {
			runLogger(rs).Warn("workflow: store artifacts", zap.Error(err))
		}
	}
}
