package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/dag"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/pass"
)

// PassesAtStage returns, in plugin enable order and then registration
// order, every pass whose constraint selects it for rt at stage.
func (m *Manager) PassesAtStage(rt model.Runtime, stage model.Stage) []pass.Pass {
	var out []pass.Pass
	for _, e := range m.plugins {
		for _, p := range e.registrar.Passes() {
			if p.Constraint().Matches(rt, stage) {
				out = append(out, p)
			}
		}
	}
	return out
}

// SortedPassesAtStage returns the passes of PassesAtStage in dependency
// order. Edges to passes outside that set are ignored. If no order exists
// the error wraps ErrUnresolvable and a *dag.CycleError, and the stage must
// not be executed.
func (m *Manager) SortedPassesAtStage(ctx context.Context, rt model.Runtime, stage model.Stage) ([]pass.Pass, error) {
	if m.closed {
		return nil, ErrClosed
	}

	key := queryKey{runtime: rt, stage: stage}
	if cached, ok := m.cache[key]; ok {
		return slices.Clone(cached.passes), cached.err
	}

	passes, err := m.resolve(ctx, rt, stage)
	m.cache[key] = queryResult{passes: passes, err: err}
	return slices.Clone(passes), err
}

func (m *Manager) resolve(ctx context.Context, rt model.Runtime, stage model.Stage) ([]pass.Pass, error) {
	logger := ctxlog.FromContext(ctx).With("runtime", string(rt), "stage", stage.String())

	candidates := m.PassesAtStage(rt, stage)
	byID := make(map[model.Identifier]pass.Pass, len(candidates))
	g := dag.New()
	for _, p := range candidates {
		g.Add(p.ID(), p.Constraint())
		byID[p.ID()] = p
	}

	for _, ref := range g.Unresolved() {
		logger.Debug("Dropping ordering edge to a pass outside this query.", "edge", ref.String())
	}

	order, err := g.Sort()
	if err != nil {
		logger.Error("Pass order cannot be resolved.", "error", err)
		return nil, fmt.Errorf("%w for runtime '%s' at stage '%s': %w", ErrUnresolvable, rt, stage, err)
	}

	out := make([]pass.Pass, len(order))
	for i, id := range order {
		out[i] = byID[id]
		if deps, _ := g.Dependencies(id); len(deps) > 0 {
			logger.Debug("Resolved pass.", "position", i, "pass", string(id), "after", deps)
		} else {
			logger.Debug("Resolved pass.", "position", i, "pass", string(id))
		}
	}
	return out, nil
}
