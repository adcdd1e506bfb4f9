package config

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// Default runtime names used when the pipeline file declares none.
const (
	DefaultFirstRuntime  model.Runtime = "play"
	DefaultSecondRuntime model.Runtime = "upload"
)

// Model is the unified, format-agnostic representation of the pipeline
// configuration.
type Model struct {
	Pipeline Pipeline
	Runtimes []model.Runtime
	// Monitor is nil when cross-runtime order checking is off.
	Monitor *Monitor
	Plugins map[model.Identifier]*Plugin
	Modules []*ModuleKind
}

// Pipeline selects which stages run and which one is the shared checkpoint.
type Pipeline struct {
	Stages          []model.Stage
	CheckpointStage model.Stage
}

// Monitor names the two runtimes whose relative order is watched.
type Monitor struct {
	First  model.Runtime
	Second model.Runtime
}

// Plugin holds the per-plugin settings of a `plugin` block.
type Plugin struct {
	ID       model.Identifier
	Enabled  bool
	Settings map[string]cty.Value
}

// ModuleKind declares a persisted module config kind whose schema is
// provided by the pipeline file rather than by a plugin.
type ModuleKind struct {
	Name string
	Type cty.Type
}

// Default returns the configuration used when no pipeline file exists.
func Default() *Model {
	return &Model{
		Pipeline: Pipeline{
			Stages:          model.Stages(),
			CheckpointStage: model.StagePre,
		},
		Runtimes: []model.Runtime{DefaultFirstRuntime, DefaultSecondRuntime},
		Monitor:  &Monitor{First: DefaultFirstRuntime, Second: DefaultSecondRuntime},
		Plugins:  make(map[model.Identifier]*Plugin),
	}
}

// Disabled returns the IDs of plugins switched off by configuration.
func (m *Model) Disabled() map[model.Identifier]bool {
	out := make(map[model.Identifier]bool)
	for id, p := range m.Plugins {
		if !p.Enabled {
			out[id] = true
		}
	}
	return out
}

// HasRuntime reports whether rt is declared.
func (m *Model) HasRuntime(rt model.Runtime) bool {
	for _, declared := range m.Runtimes {
		if declared == rt {
			return true
		}
	}
	return false
}

// Validate checks the cross-field rules a loader cannot express in a schema.
func (m *Model) Validate() error {
	var errs []error

	if len(m.Pipeline.Stages) == 0 {
		errs = append(errs, errors.New("pipeline: at least one stage is required"))
	}
	for i, stage := range m.Pipeline.Stages {
		if !stage.Valid() {
			errs = append(errs, fmt.Errorf("pipeline: invalid stage %s", stage))
			continue
		}
		if i > 0 && stage <= m.Pipeline.Stages[i-1] {
			errs = append(errs, fmt.Errorf("pipeline: stage '%s' must come after '%s'", stage, m.Pipeline.Stages[i-1]))
		}
	}
	if !containsStage(m.Pipeline.Stages, m.Pipeline.CheckpointStage) {
		errs = append(errs, fmt.Errorf("pipeline: checkpoint stage '%s' is not one of the configured stages", m.Pipeline.CheckpointStage))
	}

	seen := make(map[model.Runtime]bool)
	for _, rt := range m.Runtimes {
		if rt == "" {
			errs = append(errs, errors.New("runtime: name must not be empty"))
		}
		if seen[rt] {
			errs = append(errs, fmt.Errorf("runtime '%s' declared more than once", rt))
		}
		seen[rt] = true
	}

	if m.Monitor != nil {
		if m.Monitor.First == m.Monitor.Second {
			errs = append(errs, fmt.Errorf("monitor: first and second runtime must differ, both are '%s'", m.Monitor.First))
		}
		for _, rt := range []model.Runtime{m.Monitor.First, m.Monitor.Second} {
			if !seen[rt] {
				errs = append(errs, fmt.Errorf("monitor: runtime '%s' is not declared", rt))
			}
		}
	}

	kinds := make(map[string]bool)
	for _, k := range m.Modules {
		if kinds[k.Name] {
			errs = append(errs, fmt.Errorf("module '%s' declared more than once", k.Name))
		}
		kinds[k.Name] = true
	}

	return errors.Join(errs...)
}

func containsStage(stages []model.Stage, s model.Stage) bool {
	for _, stage := range stages {
		if stage == s {
			return true
		}
	}
	return false
}
