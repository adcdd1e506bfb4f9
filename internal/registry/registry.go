package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/dag"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/pass"
	"github.com/specialistvlad/buildgrid/internal/plugin"
)

// ErrUnresolvable wraps every failure to order the passes of a stage.
var ErrUnresolvable = errors.New("cannot resolve pass order")

// ErrClosed is returned by queries against a closed Manager.
var ErrClosed = errors.New("registry is closed")

// Options tunes Manager construction.
type Options struct {
	// Disabled lists plugin IDs that are not enabled.
	Disabled map[model.Identifier]bool
	// Runtimes lists the runtime tags the pipeline declares. When non-empty,
	// passes restricted to other tags produce a validation warning.
	Runtimes []model.Runtime
	// Configure, when set, is called for every enabled plugin before
	// OnEnable. An error aborts construction.
	Configure func(ctx context.Context, p plugin.Plugin) error
}

// enabled pairs a plugin with the passes it registered.
type enabled struct {
	plugin    plugin.Plugin
	registrar *plugin.Registrar
}

type queryKey struct {
	runtime model.Runtime
	stage   model.Stage
}

type queryResult struct {
	passes []pass.Pass
	err    error
}

// Manager holds the enabled plugins of one session.
type Manager struct {
	plugins    []*enabled
	discovered []model.Identifier
	owner      map[model.Identifier]model.Identifier // pass ID -> plugin ID
	cache      map[queryKey]queryResult
	opts       Options
	closed     bool
}

// New discovers, instantiates and enables every plugin in catalog.
func New(ctx context.Context, catalog *plugin.Catalog, opts Options) (*Manager, error) {
	logger := ctxlog.FromContext(ctx)
	entries := catalog.Discover()
	logger.Debug("Discovered plugin factories.", "count", len(entries))

	var instances []plugin.Plugin
	var discovered []model.Identifier
	seen := make(map[model.Identifier]string)
	for _, entry := range entries {
		p := entry.New()
		if p == nil {
			return nil, fmt.Errorf("plugin factory '%s' returned nil", entry.Name)
		}
		id := p.ID()
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("plugin id '%s' is produced by both factory '%s' and '%s'", id, prev, entry.Name)
		}
		seen[id] = entry.Name
		discovered = append(discovered, id)
		if opts.Disabled[id] {
			logger.Info("Plugin disabled by configuration.", "plugin", string(id))
			continue
		}
		if opts.Configure != nil {
			if err := opts.Configure(ctx, p); err != nil {
				return nil, fmt.Errorf("failed to configure plugin '%s': %w", id, err)
			}
		}
		instances = append(instances, p)
	}

	m := &Manager{
		discovered: discovered,
		owner:      make(map[model.Identifier]model.Identifier),
		cache:      make(map[queryKey]queryResult),
		opts:       opts,
	}

	for _, p := range orderPlugins(ctx, instances) {
		reg := plugin.NewRegistrar(p.ID(), logger)
		reg.Open()
		p.OnEnable(reg)
		reg.Seal()

		for _, ps := range reg.Passes() {
			if other, taken := m.owner[ps.ID()]; taken {
				m.disable(ctx)
				p.OnDisable()
				return nil, fmt.Errorf("pass '%s' is registered by both plugin '%s' and '%s'", ps.ID(), other, p.ID())
			}
			m.owner[ps.ID()] = p.ID()
		}
		m.plugins = append(m.plugins, &enabled{plugin: p, registrar: reg})
		logger.Debug("Plugin enabled.", "plugin", string(p.ID()), "name", p.FriendlyName(), "passes", len(reg.Passes()))
	}

	for _, warning := range m.Validate() {
		logger.Warn("Registry validation warning.", "detail", warning)
	}

	logger.Info("Plugin registry ready.", "plugins", len(m.plugins), "passes", len(m.owner))
	return m, nil
}

// orderPlugins sorts plugins by their plugin-level before/after edges. A
// plugin-level cycle is a plugin packaging defect, not a build failure, so
// the discovery order is used instead and the cycle is logged.
func orderPlugins(ctx context.Context, instances []plugin.Plugin) []plugin.Plugin {
	g := dag.New()
	byID := make(map[model.Identifier]plugin.Plugin, len(instances))
	for _, p := range instances {
		g.Add(p.ID(), p.Constraint())
		byID[p.ID()] = p
	}

	order, err := g.Sort()
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Plugin constraints are cyclic, enabling plugins in discovery order.", "error", err)
		return instances
	}

	out := make([]plugin.Plugin, len(order))
	for i, id := range order {
		out[i] = byID[id]
	}
	return out
}

// Plugins returns the enabled plugins in enable order.
func (m *Manager) Plugins() []plugin.Plugin {
	out := make([]plugin.Plugin, len(m.plugins))
	for i, e := range m.plugins {
		out[i] = e.plugin
	}
	return out
}

// Discovered returns the ID of every plugin the catalog produced, enabled
// or not, in discovery order.
func (m *Manager) Discovered() []model.Identifier {
	return slices.Clone(m.discovered)
}

// Owner returns the plugin that registered the pass id.
func (m *Manager) Owner(id model.Identifier) (model.Identifier, bool) {
	owner, ok := m.owner[id]
	return owner, ok
}

// Close calls OnDisable on every plugin in reverse enable order and drops
// the query cache. Closing twice is a no-op.
func (m *Manager) Close(ctx context.Context) {
	if m.closed {
		return
	}
	m.disable(ctx)
	m.closed = true
}

func (m *Manager) disable(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for i := len(m.plugins) - 1; i >= 0; i-- {
		p := m.plugins[i].plugin
		p.OnDisable()
		logger.Debug("Plugin disabled.", "plugin", string(p.ID()))
	}
	m.plugins = nil
	m.owner = make(map[model.Identifier]model.Identifier)
	m.cache = make(map[queryKey]queryResult)
}
