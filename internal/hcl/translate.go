package hcl

import (
	"context"
	"fmt"

	"github.com/specialistvlad/buildgrid/internal/config"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// translate converts the decoded HCL blocks into the agnostic model,
// starting from config.Default() for anything the file leaves out.
func translate(ctx context.Context, root *fileRoot) (*config.Model, error) {
	m := config.Default()

	if p := root.Pipeline; p != nil {
		if p.Stages != nil {
			stages := make([]model.Stage, 0, len(p.Stages))
			for _, name := range p.Stages {
				stage, err := model.ParseStage(name)
				if err != nil {
					return nil, fmt.Errorf("pipeline: %w", err)
				}
				stages = append(stages, stage)
			}
			m.Pipeline.Stages = stages
		}
		if p.CheckpointStage != nil {
			stage, err := model.ParseStage(*p.CheckpointStage)
			if err != nil {
				return nil, fmt.Errorf("pipeline: checkpoint_stage: %w", err)
			}
			m.Pipeline.CheckpointStage = stage
		}
	}

	// Declaring runtimes replaces the defaults, and with them the default
	// monitor pairing.
	if len(root.Runtimes) > 0 {
		m.Runtimes = m.Runtimes[:0]
		for _, rt := range root.Runtimes {
			m.Runtimes = append(m.Runtimes, model.Runtime(rt.Name))
		}
		m.Monitor = nil
	}
	if root.Monitor != nil {
		m.Monitor = &config.Monitor{
			First:  model.Runtime(root.Monitor.First),
			Second: model.Runtime(root.Monitor.Second),
		}
	}

	for _, pb := range root.Plugins {
		p, err := translatePlugin(pb)
		if err != nil {
			return nil, err
		}
		if _, dup := m.Plugins[p.ID]; dup {
			return nil, fmt.Errorf("plugin '%s' configured more than once", p.ID)
		}
		m.Plugins[p.ID] = p
	}

	for _, mb := range root.Modules {
		ty, err := typeExprToCtyType(ctx, mb.Type)
		if err != nil {
			return nil, fmt.Errorf("in module '%s': %w", mb.Name, err)
		}
		m.Modules = append(m.Modules, &config.ModuleKind{Name: mb.Name, Type: ty})
	}

	return m, nil
}

// translatePlugin evaluates the free-form settings of a plugin block.
// Settings are literals: no variables or functions are in scope.
func translatePlugin(pb *pluginBlock) (*config.Plugin, error) {
	p := &config.Plugin{
		ID:       model.Identifier(pb.ID),
		Enabled:  true,
		Settings: make(map[string]cty.Value),
	}
	if pb.Enabled != nil {
		p.Enabled = *pb.Enabled
	}
	if pb.Settings == nil {
		return p, nil
	}

	attrs, diags := pb.Settings.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("plugin '%s': %w", pb.ID, diags)
	}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("plugin '%s': invalid value for setting '%s': %w", pb.ID, name, diags)
		}
		p.Settings[name] = val
	}
	return p, nil
}
