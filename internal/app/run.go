package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/executor"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/workspace"
)

// ErrNoSession is returned by Build after a failed Reset left the app
// without enabled plugins.
var ErrNoSession = errors.New("no active plugin session")

// Build runs one build for rt against the configured workspace.
func (a *App) Build(ctx context.Context, rt model.Runtime) (*executor.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger.With("runtime", string(rt))

	if a.executor == nil {
		return nil, ErrNoSession
	}

	if len(a.model.Runtimes) > 0 && !a.model.HasRuntime(rt) {
		return nil, fmt.Errorf("runtime '%s' is not declared in the pipeline file", rt)
	}

	ws, err := workspace.Load(ctx, a.cfg.WorkspacePath, a.schemas)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}

	res := a.executor.Run(ctx, rt, ws)
	res.Report.LogTo(ctx, logger.With("build_id", res.BuildID))

	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, res); err != nil {
			logger.Warn("Failed to publish report.", "build_id", res.BuildID, "error", err)
		}
	}

	if a.cfg.SaveWorkspace && !res.Failed() {
		if err := ws.Save(ctx); err != nil {
			return res, fmt.Errorf("failed to save workspace: %w", err)
		}
	}
	return res, nil
}

// Run executes one build per selected runtime, sequentially, in the order
// given on the command line or, failing that, declared in the pipeline file.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	runtimes := make([]model.Runtime, 0, len(a.cfg.Runtimes))
	for _, rt := range a.cfg.Runtimes {
		runtimes = append(runtimes, model.Runtime(rt))
	}
	if len(runtimes) == 0 {
		runtimes = a.model.Runtimes
	}
	if len(runtimes) == 0 {
		return fmt.Errorf("no runtime selected: pass -runtime or declare a runtime block")
	}

	failed := 0
	for _, rt := range runtimes {
		res, err := a.Build(ctx, rt)
		if err != nil {
			return err
		}
		if res.Failed() {
			failed++
		}
	}

	a.logger.Debug("App.Run method finished.", "builds", len(runtimes), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d builds failed", failed, len(runtimes))
	}
	return nil
}
