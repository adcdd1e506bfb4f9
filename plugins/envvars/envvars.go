// Package envvars is the core plugin that snapshots the process
// environment into the build properties at the start of every build.
package envvars

import (
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/moduleconfig"
	"github.com/specialistvlad/buildgrid/internal/pass"
	"github.com/specialistvlad/buildgrid/internal/plugin"
	"github.com/specialistvlad/buildgrid/internal/report"
	"github.com/specialistvlad/buildgrid/plugins/properties"
	"github.com/zclconf/go-cty/cty"
)

const (
	// ID is the plugin identifier.
	ID model.Identifier = "buildgrid.envvars"
	// CapturePass is the identifier of the capture pass.
	CapturePass model.Identifier = "envvars.capture"
	// ModuleName is the persisted module kind that narrows the capture for
	// one workspace.
	ModuleName = "envvars"
)

// Settings are read from the plugin's block in the pipeline file.
type Settings struct {
	Include []string `cty:"include"`
	Prefix  string   `cty:"prefix"`
}

// ModuleConfig is the workspace-level config of ModuleName.
type ModuleConfig struct {
	Include []string `cty:"include"`
}

// Plugin implements plugin.Plugin.
type Plugin struct {
	settings Settings
	// Environ lists the environment as KEY=VALUE pairs.
	Environ func() []string
}

var (
	_ plugin.Plugin         = (*Plugin)(nil)
	_ plugin.Configurable   = (*Plugin)(nil)
	_ plugin.SchemaProvider = (*Plugin)(nil)
)

// New returns the plugin with its default settings.
func New() *Plugin {
	return &Plugin{
		settings: Settings{Prefix: "env."},
		Environ:  os.Environ,
	}
}

func (p *Plugin) ID() model.Identifier         { return ID }
func (p *Plugin) FriendlyName() string         { return "Environment variables" }
func (p *Plugin) Constraint() model.Constraint { return model.At(model.StagePre) }
func (p *Plugin) Settings() any                { return &p.settings }
func (p *Plugin) OnDisable()                   {}

// ModuleSchemas implements plugin.SchemaProvider.
func (p *Plugin) ModuleSchemas() []moduleconfig.Schema {
	return []moduleconfig.Schema{{
		Name: ModuleName,
		Type: cty.Object(map[string]cty.Type{"include": cty.List(cty.String)}),
		New:  func() any { return new(ModuleConfig) },
	}}
}

// OnEnable implements plugin.Plugin.
func (p *Plugin) OnEnable(r *plugin.Registrar) {
	r.RegisterPass(pass.Func(CapturePass, model.At(model.StagePre), p.capture))
}

func (p *Plugin) capture(c *pass.Context) bool {
	include := p.settings.Include
	if m, ok := c.Target().Module(ModuleName); ok && m.Err == nil && m.Config != nil {
		include = m.Config.(*ModuleConfig).Include
	}

	props := properties.Of(c)
	captured := 0
	for _, e := range p.Environ() {
		name, value, ok := strings.Cut(e, "=")
		if !ok || name == "" {
			continue
		}
		if len(include) > 0 && !slices.Contains(include, name) {
			continue
		}
		props.Set(p.settings.Prefix+name, value)
		captured++
	}

	c.Logger().Debug("Captured environment.", "count", captured)
	c.Log(report.SeverityDebug, string(CapturePass), "captured "+strconv.Itoa(captured)+" environment variables")
	return true
}
