package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/report"
	"github.com/sells-group/idea-research/internal/state"
	"github.com/sells-group/idea-research/internal/store"
)

// ErrRunFailed is returned when a run ends in StateFailed.
var ErrRunFailed = eris.New("workflow: run failed")

// stageProgress is the progress reached when each stage finishes.
var stageProgress = map[model.PipelineState]int{
	model.StateScraping:      20,
	model.StateExtraction:    40,
	model.StateAnalysis:      70,
	model.StateConsolidation: 85,
	model.StateReporting:     95,
}

// Controller runs handlers in order against a fresh run state.
type Controller struct {
	handlers []Handler
	store    store.Store
}

// NewController creates a Controller. st may be nil, in which case runs are
// not persisted.
func NewController(st store.Store, handlers ...Handler) *Controller {
	return &Controller{handlers: handlers, store: st}
}

// Start records a new run for idea without executing it.
func (c *Controller) Start(ctx context.Context, idea model.Idea) (*model.Run, error) {
	if c.store == nil {
		now := time.Now().UTC()
		return &model.Run{ID: uuid.New().String(), Idea: idea, State: model.StateInit, CreatedAt: now, UpdatedAt: now}, nil
	}
	run, err := c.store.CreateRun(ctx, idea)
	if err != nil {
		return nil, eris.Wrap(err, "workflow: create run")
	}
	return run, nil
}

// Run starts and executes a run for idea.
func (c *Controller) Run(ctx context.Context, idea model.Idea) (*model.Run, *state.RunState, error) {
	run, err := c.Start(ctx, idea)
	if err != nil {
		return nil, nil, err
	}
	return c.Execute(ctx, run)
}

// Execute drives run through every handler. After each handler the
// controller stops as soon as the run state is failed. The returned run
// carries the final state and result; err wraps ErrRunFailed when the run
// failed.
func (c *Controller) Execute(ctx context.Context, run *model.Run) (*model.Run, *state.RunState, error) {
	start := time.Now()
	rs := state.New(run.ID)
	_ = rs.AddData(state.KeyIdea, run.Idea)
	log := runLogger(rs).With(zap.String("idea", run.Idea.Name))
	log.Info("workflow: run started")

	for _, h := range c.handlers {
		stage := h.Stage()
		if err := ctx.Err(); err != nil {
			fail(rs, model.Stage(stage), "run canceled: "+err.Error())
			break
		}
		if err := rs.Advance(stage, rs.Progress()); err != nil {
			fail(rs, model.Stage(stage), err.Error())
			break
		}
		c.persistState(ctx, rs)

		stageStart := time.Now()
		h.Handle(ctx, rs)
		log.Info("workflow: stage finished",
			zap.String("stage", string(stage)),
			zap.String("state", string(rs.Current())),
			zap.Int64("duration_ms", time.Since(stageStart).Milliseconds()),
		)

		if rs.Failed() {
			break
		}
		rs.UpdateProgress(stageProgress[stage])
	}

	if !rs.Failed() {
		if err := rs.Advance(model.StateComplete, 100); err != nil {
			fail(rs, model.StageReporting, err.Error())
		}
	}

	run.State = rs.Current()
	run.Progress = rs.Progress()
	run.Result = buildResult(rs, time.Since(start))
	run.UpdatedAt = time.Now().UTC()

	if c.store != nil {
		// The caller's context may already be canceled; the final record
		// must still be written.
		if err := c.store.CompleteRun(context.WithoutCancel(ctx), run.ID, run.State, run.Progress, run.Result); err != nil {
			log.Warn("workflow: persist result", zap.Error(err))
		}
	}

	if rs.Failed() {
		log.Error("workflow: run failed", zap.Strings("errors", run.Result.Errors))
		return run, rs, eris.Wrapf(ErrRunFailed, "run %s", run.ID)
	}
	log.Info("workflow: run complete",
		zap.Bool("partial", run.Result.Partial),
		zap.Int64("duration_ms", run.Result.DurationMs),
	)
	return run, rs, nil
}

func (c *Controller) persistState(ctx context.Context, rs *state.RunState) {
	if c.store == nil {
		return
	}
	if err := c.store.UpdateRunState(ctx, rs.ID(), rs.Current(), rs.Progress()); err != nil {
		runLogger(rs).Warn("workflow: persist state", zap.Error(err))
	}
}

func buildResult(rs *state.RunState, elapsed time.Duration) *model.RunResult {
	snap := rs.Snapshot()
	res := &model.RunResult{
		Partial:      rs.HasPartialData(),
		PartialFlags: snap.Partial,
		Errors:       rs.Errors(),
		DurationMs:   elapsed.Milliseconds(),
	}
	if a, ok := state.Lookup[model.Assessment](rs, state.KeyConsolidatedOutput); ok {
		res.Assessment = &a
	}
	if artifacts, ok := state.Lookup[[]report.Artifact](rs, state.KeyReportArtifacts); ok {
		for _, art := range artifacts {
			res.Artifacts = append(res.Artifacts, art.Path)
		}
	}
	return res
}
