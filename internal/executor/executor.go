package executor

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/ordermonitor"
	"github.com/specialistvlad/buildgrid/internal/pass"
	"github.com/specialistvlad/buildgrid/internal/report"
	"github.com/specialistvlad/buildgrid/internal/workspace"
)

// Report codes produced by the executor.
const (
	CodeUnresolvedOrder = "unresolved-order"
	CodePassFailed      = "pass-failed"
	CodePassPanic       = "pass-panic"
	CodeOutOfOrder      = "runtime-out-of-order"
)

// PassSource answers resolved-order queries. *registry.Manager implements it.
type PassSource interface {
	SortedPassesAtStage(ctx context.Context, rt model.Runtime, stage model.Stage) ([]pass.Pass, error)
}

// Checkpointer observes runtimes passing the checkpoint stage.
// *ordermonitor.Monitor implements it.
type Checkpointer interface {
	Checkpoint(rt model.Runtime) ordermonitor.Observation
}

// Options configures an Executor.
type Options struct {
	// Stages to run, in order. Empty means model.Stages().
	Stages []model.Stage
	// Monitor, when set, is told about every completed CheckpointStage.
	Monitor Checkpointer
	// CheckpointStage is the stage reported to Monitor.
	CheckpointStage model.Stage
}

// Executor runs builds against a pass source.
type Executor struct {
	source PassSource
	opts   Options
}

// New creates an executor.
func New(source PassSource, opts Options) *Executor {
	if len(opts.Stages) == 0 {
		opts.Stages = model.Stages()
	}
	opts.Stages = slices.Clone(opts.Stages)
	return &Executor{source: source, opts: opts}
}

// Result is the outcome of one build.
type Result struct {
	BuildID  string         `json:"build_id"`
	Runtime  model.Runtime  `json:"runtime"`
	Stages   []model.Stage  `json:"stages"`
	Aborted  bool           `json:"aborted"`
	Duration time.Duration  `json:"duration"`
	Report   *report.Report `json:"-"`
	Entries  []report.Entry `json:"entries"`
}

// Failed reports whether the build was aborted or its report has an Error.
func (r *Result) Failed() bool {
	return r.Aborted || r.Report.Failed()
}

// Run executes one build for rt against target and returns its result.
// Run never returns an error: every failure is in the result's report.
func (e *Executor) Run(ctx context.Context, rt model.Runtime, target *workspace.Workspace) *Result {
	start := time.Now()
	buildID := uuid.NewString()
	ctx = ctxlog.With(ctx, "build_id", buildID, "runtime", string(rt))
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Starting build", "stages", len(e.opts.Stages))

	res := &Result{BuildID: buildID, Runtime: rt, Report: report.New()}
	pc := pass.NewContext(ctx, buildID, rt, res.Report, target)

	for _, stage := range e.opts.Stages {
		if !e.runStage(ctx, pc, stage) {
			res.Aborted = true
			break
		}
		res.Stages = append(res.Stages, stage)
		if e.opts.Monitor != nil && stage == e.opts.CheckpointStage {
			e.checkpoint(ctx, pc, rt)
		}
	}

	// Features live exactly as long as the build.
	pc.Close()
	res.Duration = time.Since(start)
	res.Entries = res.Report.Entries()
	if res.Failed() {
		logger.Error("🏁 Build failed.", "aborted", res.Aborted, "entries", res.Report.Len(), "duration", res.Duration)
	} else {
		logger.Info("🏁 Build finished.", "entries", res.Report.Len(), "duration", res.Duration)
	}
	return res
}

// runStage resolves and executes one stage. It returns false if the stage
// could not be resolved, in which case no pass of it was invoked.
func (e *Executor) runStage(ctx context.Context, pc *pass.Context, stage model.Stage) bool {
	logger := ctxlog.FromContext(ctx).With("stage", stage.String())

	passes, err := e.source.SortedPassesAtStage(ctx, pc.Runtime(), stage)
	if err != nil {
		logger.Error("Aborting build: pass order cannot be resolved.", "error", err)
		pc.LogCode(report.SeverityError, "stage."+stage.String(), err.Error(), CodeUnresolvedOrder)
		return false
	}

	logger.Debug("Stage resolved.", "passes", len(passes))
	pc.EnterStage(stage)
	for _, p := range passes {
		e.invoke(ctx, pc, p)
	}
	return true
}

func (e *Executor) checkpoint(ctx context.Context, pc *pass.Context, rt model.Runtime) {
	logger := ctxlog.FromContext(ctx)
	obs := e.opts.Monitor.Checkpoint(rt)
	switch obs {
	case ordermonitor.CorrectOrder:
		logger.Info("Runtime order confirmed at checkpoint.", "stage", e.opts.CheckpointStage.String())
	case ordermonitor.OutOfOrder:
		logger.Warn("Runtime reached the checkpoint out of the expected order.", "stage", e.opts.CheckpointStage.String())
		pc.LogCode(report.SeverityWarning, "runtime-order",
			"runtime '"+string(rt)+"' reached the checkpoint without its predecessor", CodeOutOfOrder)
	default:
		logger.Debug("Checkpoint observed.", "observation", obs.String())
	}
}
