// Package monitoring summarises recent research runs and raises webhook
// alerts when too many of them fail or finish on degraded data.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/store"
)

// maxScannedRuns bounds how many recent runs one collection reads.
const maxScannedRuns = 10000

// MetricsSnapshot holds a point-in-time view of run health.
type MetricsSnapshot struct {
	RunsTotal      int            `json:"runs_total" yaml:"runs_total"`
	RunsComplete   int            `json:"runs_complete" yaml:"runs_complete"`
	RunsFailed     int            `json:"runs_failed" yaml:"runs_failed"`
	RunsInProgress int            `json:"runs_in_progress" yaml:"runs_in_progress"`
	RunsPartial    int            `json:"runs_partial" yaml:"runs_partial"`
	RunsStalled    int            `json:"runs_stalled" yaml:"runs_stalled"`
	StalledRunIDs  []string       `json:"stalled_run_ids,omitempty" yaml:"stalled_run_ids,omitempty"`
	FailRate       float64        `json:"fail_rate" yaml:"fail_rate"`
	PartialRate    float64        `json:"partial_rate" yaml:"partial_rate"`
	AvgScore       float64        `json:"avg_score" yaml:"avg_score"`
	AvgDurationMs  int64          `json:"avg_duration_ms" yaml:"avg_duration_ms"`
	Ratings        map[string]int `json:"ratings" yaml:"ratings"`

	LookbackHours int       `json:"lookback_hours" yaml:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at" yaml:"collected_at"`
}

// Finished is the number of runs that reached a terminal state.
func (s *MetricsSnapshot) Finished() int { return s.RunsComplete + s.RunsFailed }

// RunLister is the store method the collector needs.
type RunLister interface {
	ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error)
}

// Collector gathers run metrics from the store.
type Collector struct {
	store      RunLister
	now        func() time.Time
	stallAfter time.Duration
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithStallAfter counts unfinished runs whose last update is older than d
// as stalled. Zero disables stall detection.
func WithStallAfter(d time.Duration) CollectorOption {
	return func(c *Collector) { c.stallAfter = d }
}

// NewCollector creates a new metrics collector.
func NewCollector(st RunLister, opts ...CollectorOption) *Collector {
	c := &Collector{store: st, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// stalled reports whether an unfinished run has gone quiet for longer than
// the stall window.
func (c *Collector) stalled(r model.Run, now time.Time) bool {
	if c.stallAfter <= 0 || r.State.IsTerminal() {
		return false
	}
	last := r.UpdatedAt
	if last.IsZero() {
		last = r.CreatedAt
	}
	return now.Sub(last) > c.stallAfter
}

// Collect gathers a snapshot over runs created in the last lookbackHours.
// Zero or negative lookback covers every stored run.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := c.now().UTC()
	snap := &MetricsSnapshot{
		Ratings:       make(map[string]int),
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}

	runs, err := c.store.ListRuns(ctx, store.RunFilter{Limit: maxScannedRuns})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	var cutoff time.Time
	if lookbackHours > 0 {
		cutoff = now.Add(-time.Duration(lookbackHours) * time.Hour)
	}

	var totalScore float64
	var scored int
	var totalDur int64

	for _, r := range runs {
		if r.CreatedAt.Before(cutoff) {
			continue
		}
		snap.RunsTotal++
		switch r.State {
		case model.StateComplete:
			snap.RunsComplete++
		case model.StateFailed:
			snap.RunsFailed++
		default:
			snap.RunsInProgress++
			if c.stalled(r, now) {
				snap.RunsStalled++
				snap.StalledRunIDs = append(snap.StalledRunIDs, r.ID)
			}
		}
		if r.Result == nil {
			continue
		}
		totalDur += r.Result.DurationMs
		if r.Result.Partial {
			snap.RunsPartial++
		}
		if a := r.Result.Assessment; a != nil {
			totalScore += a.OverallScore
			scored++
			snap.Ratings[a.Rating]++
		}
	}

	if finished := snap.Finished(); finished > 0 {
		snap.FailRate = float64(snap.RunsFailed) / float64(finished)
		snap.AvgDurationMs = totalDur / int64(finished)
	}
	if snap.RunsComplete > 0 {
		snap.PartialRate = float64(snap.RunsPartial) / float64(snap.RunsComplete)
	}
	if scored > 0 {
		snap.AvgScore = totalScore / float64(scored)
	}
	return snap, nil
}
