package model

import "time"

// PipelineState is the position of a run in the research state machine.
type PipelineState string

const (
	StateInit          PipelineState = "init"
	StateScraping      PipelineState = "scraping"
	StateExtraction    PipelineState = "extraction"
	StateAnalysis      PipelineState = "analysis"
	StateConsolidation PipelineState = "consolidation"
	StateReporting     PipelineState = "reporting"
	StateComplete      PipelineState = "complete"
	StateFailed        PipelineState = "failed"
)

// pipelineOrder ranks the forward states. StateFailed is not ranked because
// it can be entered from anywhere.
var pipelineOrder = map[PipelineState]int{
	StateInit:          0,
	StateScraping:      1,
	StateExtraction:    2,
	StateAnalysis:      3,
	StateConsolidation: 4,
	StateReporting:     5,
	StateComplete:      6,
}

// IsTerminal reports whether no further transitions are allowed.
func (s PipelineState) IsTerminal() bool {
	return s == StateComplete || s == StateFailed
}

// CanTransition reports whether moving from s to next keeps the state
// machine moving forward. Any non-terminal state may move to StateFailed.
func (s PipelineState) CanTransition(next PipelineState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	from, ok := pipelineOrder[s]
	if !ok {
		return false
	}
	to, ok := pipelineOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// Stage names a unit of work that can degrade independently. Pipeline
// stages share their names with the matching PipelineState; the analysis
// sub-stages have their own.
type Stage string

const (
	StageScraping      Stage = "scraping"
	StageExtraction    Stage = "extraction"
	StageAnalysis      Stage = "analysis"
	StageFinancial     Stage = "financial"
	StageCompetitive   Stage = "competitive"
	StageMarket        Stage = "market"
	StageConsolidation Stage = "consolidation"
	StageReporting     Stage = "reporting"
)

// Run is the persisted record of one research run.
type Run struct {
	ID        string        `json:"id" yaml:"id"`
	Idea      Idea          `json:"idea" yaml:"idea"`
	State     PipelineState `json:"state" yaml:"state"`
	Progress  int           `json:"progress" yaml:"progress"`
	Result    *RunResult    `json:"result,omitempty" yaml:"result,omitempty"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" yaml:"updated_at"`
}

// RunResult is the final outcome stored when a run reaches a terminal state.
type RunResult struct {
	Partial      bool            `json:"partial" yaml:"partial"`
	PartialFlags map[string]bool `json:"partial_flags,omitempty" yaml:"partial_flags,omitempty"`
	Errors       []string        `json:"errors,omitempty" yaml:"errors,omitempty"`
	Assessment   *Assessment     `json:"assessment,omitempty" yaml:"assessment,omitempty"`
	Artifacts    []string        `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	DurationMs   int64           `json:"duration_ms" yaml:"duration_ms"`
}
