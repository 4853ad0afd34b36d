package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/extract"
	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/state"
)

// Extraction turns pages into structured signals. It never ends the run: a
// missing input or a crash yields a defaulted extraction instead.
type Extraction struct {
	extractor *extract.Extractor
}

// NewExtraction creates the extraction handler.
func NewExtraction(e *extract.Extractor) *Extraction {
	return &Extraction{extractor: e}
}

func (h *Extraction) Stage() model.PipelineState { return model.StateExtraction }

func (h *Extraction) Handle(_ context.Context, rs *state.RunState) {
	pages, _ := state.Lookup[[]model.Page](rs, state.KeyScrapedContent)
	if len(pages) == 0 {
		h.substitute(rs, "no scraped content available")
		return
	}

	ex, err := safeCall(func() (model.Extraction, error) {
		return h.extractor.Extract(pages), nil
	})
	if err != nil {
		h.substitute(rs, err.Error())
		return
	}

	if err := rs.AddData(state.KeyExtractedData, model.Computed(ex)); err != nil {
		runLogger(rs).Warn("workflow: store extraction", zap.Error(err))
	}
	if h.extractor.LowYield(ex) {
		warn(rs, model.StageExtraction, fmt.Sprintf("low keyword yield: %d keywords above cutoff %d from %d pages",
			len(ex.Keywords), ex.KeywordCutoff, ex.PagesUsed))
	}
}

func (h *Extraction) substitute(rs *state.RunState, reason string) {
	rs.SubstituteDefault(state.KeyExtractedData, model.Defaulted(model.EmptyExtraction(), reason))
	warn(rs, model.StageExtraction, "extraction defaulted: "+reason)
}
