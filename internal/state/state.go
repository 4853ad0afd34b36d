// Package state holds the mutable record of a single research run: the
// current pipeline state, progress, stage outputs, failures and partial
// flags. Every method is safe for concurrent use.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/idea-research/internal/model"
)

// Data keys written by the controller and the stage handlers.
const (
	KeyIdea                = "idea"
	KeyScrapedContent      = "scraped_content"
	KeyExtractedData       = "extracted_data"
	KeyFinancialAnalysis   = "financial_analysis"
	KeyCompetitiveAnalysis = "competitive_analysis"
	KeyMarketAnalysis      = "market_analysis"
	KeyConsolidatedOutput  = "consolidated_output"
	KeyReportArtifacts     = "report_artifacts"
)

// ErrKeyExists is returned by AddData when the key was already written.
var ErrKeyExists = eris.New("state: data key already set")

// FailureKind separates run-ending failures from degradations.
type FailureKind string

const (
	FailureHard    FailureKind = "hard"
	FailurePartial FailureKind = "partial"
)

// Failure is one entry in the run's failure log.
type Failure struct {
	Kind    FailureKind `json:"kind" yaml:"kind"`
	Stage   model.Stage `json:"stage" yaml:"stage"`
	Message string      `json:"message" yaml:"message"`
	At      time.Time   `json:"at" yaml:"at"`
}

// IsPartial reports whether the failure degraded rather than ended the run.
func (f Failure) IsPartial() bool { return f.Kind == FailurePartial }

// String renders the failure the way it appears in logs and reports.
func (f Failure) String() string {
	if f.IsPartial() {
		return "[PARTIAL] " + f.Message
	}
	return f.Message
}

// RunState is the shared state of one run. The controller owns it and
// passes it explicitly to each stage handler.
type RunState struct {
	mu       sync.Mutex
	id       string
	current  model.PipelineState
	progress int
	data     map[string]any
	failures []Failure
	partial  map[model.Stage]bool
	now      func() time.Time
}

// New creates a run state in StateInit at 0%.
func New(runID string) *RunState {
	return &RunState{
		id:      runID,
		current: model.StateInit,
		data:    make(map[string]any),
		partial: make(map[model.Stage]bool),
		now:     time.Now,
	}
}

// ID returns the run id.
func (s *RunState) ID() string { return s.id }

// AddData stores value under key. Keys are write-once; use
// SubstituteDefault to replace a value with a fallback.
func (s *RunState) AddData(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return eris.Wrapf(ErrKeyExists, "state: add %s", key)
	}
	s.data[key] = value
	return nil
}

// SubstituteDefault writes a fallback value for key whether or not it was
// already set.
func (s *RunState) SubstituteDefault(key string, value any) {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
}

// GetData returns the value stored under key, or def when absent.
func (s *RunState) GetData(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[key]; ok {
		return v
	}
	return def
}

// HasData reports whether key has been written.
func (s *RunState) HasData(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// Lookup returns the value under key as a T. ok is false when the key is
// missing or holds a different type.
func Lookup[T any](s *RunState, key string) (T, bool) {
	v, ok := s.GetData(key, nil).(T)
	return v, ok
}

// AddFailure appends f to the failure log, stamping it if needed. A
// partial failure also marks its stage partial.
func (s *RunState) AddFailure(f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.At.IsZero() {
		f.At = s.now()
	}
	s.failures = append(s.failures, f)
	if f.IsPartial() && f.Stage != "" {
		s.partial[f.Stage] = true
	}
}

// MarkPartial flags stage as partial without logging a failure.
func (s *RunState) MarkPartial(stage model.Stage) {
	s.mu.Lock()
	s.partial[stage] = true
	s.mu.Unlock()
}

// Warn records a partial degradation of stage and marks it partial.
func (s *RunState) Warn(stage model.Stage, msg string) {
	s.AddFailure(Failure{Kind: FailurePartial, Stage: stage, Message: msg})
}

// Fail records a hard failure and moves the run to StateFailed.
func (s *RunState) Fail(stage model.Stage, msg string) {
	s.AddFailure(Failure{Kind: FailureHard, Stage: stage, Message: msg})
	s.UpdateState(model.StateFailed)
}

// UpdateProgress raises progress to pct. Regressions are ignored and values
// above 100 are clamped.
func (s *RunState) UpdateProgress(pct int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setProgress(pct)
}

func (s *RunState) setProgress(pct int) {
	if pct > 100 {
		pct = 100
	}
	if pct > s.progress {
		s.progress = pct
	}
}

// UpdateState sets the current state without checking the transition.
func (s *RunState) UpdateState(next model.PipelineState) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
}

// Advance moves to next and raises progress together. It refuses to leave a
// terminal state or to move backwards.
func (s *RunState) Advance(next model.PipelineState, pct int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current.CanTransition(next) {
		return eris.Errorf("state: invalid transition %s -> %s", s.current, next)
	}
	s.current = next
	s.setProgress(pct)
	return nil
}

// Current returns the current pipeline state.
func (s *RunState) Current() model.PipelineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Progress returns the current progress percentage.
func (s *RunState) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Failed reports whether the run hit a hard failure.
func (s *RunState) Failed() bool {
	return s.Current() == model.StateFailed
}

// HasPartialData reports whether any stage is flagged partial or any
// failure in the log is partial.
func (s *RunState) HasPartialData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.partial {
		if v {
			return true
		}
	}
	for _, f := range s.failures {
		if f.IsPartial() {
			return true
		}
	}
	return false
}

// IsPartial reports whether stage was marked partial.
func (s *RunState) IsPartial(stage model.Stage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partial[stage]
}

// PartialFlags returns a copy of the partial flags keyed by stage name.
func (s *RunState) PartialFlags() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.partial))
	for k, v := range s.partial {
		out[string(k)] = v
	}
	return out
}

// Failures returns a copy of the failure log in insertion order.
func (s *RunState) Failures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Failure(nil), s.failures...)
}

// Errors renders the failure log as strings.
func (s *RunState) Errors() []string {
	failures := s.Failures()
	out := make([]string, 0, len(failures))
	for _, f := range failures {
		out = append(out, f.String())
	}
	return out
}

// Snapshot is a point-in-time copy of the run state.
type Snapshot struct {
	RunID    string              `json:"run_id" yaml:"run_id"`
	State    model.PipelineState `json:"state" yaml:"state"`
	Progress int                 `json:"progress" yaml:"progress"`
	Data     map[string]any      `json:"data" yaml:"data"`
	Failures []Failure           `json:"failures" yaml:"failures"`
	Partial  map[string]bool     `json:"partial" yaml:"partial"`
}

// Snapshot copies the state. Partial flags are exported as
// "<stage>_partial" keys.
func (s *RunState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := make(map[string]any, len(s.data))
	for k, v := range s.data {
		data[k] = v
	}
	partial := make(map[string]bool, len(s.partial))
	for k, v := range s.partial {
		partial[fmt.Sprintf("%s_partial", k)] = v
	}
	return Snapshot{
		RunID:    s.id,
		State:    s.current,
		Progress: s.progress,
		Data:     data,
		Failures: append([]Failure(nil), s.failures...),
		Partial:  partial,
	}
}
