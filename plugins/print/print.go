// Package print is the core plugin that writes the properties collected
// during a build at the end of it.
package print

import (
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/moduleconfig"
	"github.com/specialistvlad/buildgrid/internal/pass"
	"github.com/specialistvlad/buildgrid/internal/plugin"
	"github.com/specialistvlad/buildgrid/plugins/properties"
	"github.com/zclconf/go-cty/cty"
)

const (
	ID          model.Identifier = "buildgrid.print"
	SummaryPass model.Identifier = "print.summary"
	ModuleName                   = "print"
)

// Settings are read from the plugin's block in the pipeline file.
type Settings struct {
	Title string `cty:"title"`
}

// ModuleConfig is the workspace-level config of ModuleName.
type ModuleConfig struct {
	Title string `cty:"title"`
}

// Plugin implements plugin.Plugin.
type Plugin struct {
	settings Settings
	// Out receives the summary.
	Out io.Writer
}

var (
	_ plugin.Plugin         = (*Plugin)(nil)
	_ plugin.Configurable   = (*Plugin)(nil)
	_ plugin.SchemaProvider = (*Plugin)(nil)
	_ plugin.Printer        = (*Plugin)(nil)
)

// New returns the plugin writing to stdout until SetOutput is called.
func New() *Plugin {
	return &Plugin{settings: Settings{Title: "Build properties"}, Out: os.Stdout}
}

func (p *Plugin) ID() model.Identifier         { return ID }
func (p *Plugin) FriendlyName() string         { return "Print summary" }
func (p *Plugin) Constraint() model.Constraint { return model.At(model.StagePost) }
func (p *Plugin) Settings() any                { return &p.settings }
func (p *Plugin) OnDisable()                   {}
func (p *Plugin) SetOutput(w io.Writer)        { p.Out = w }

// ModuleSchemas implements plugin.SchemaProvider.
func (p *Plugin) ModuleSchemas() []moduleconfig.Schema {
	return []moduleconfig.Schema{{
		Name: ModuleName,
		Type: cty.Object(map[string]cty.Type{"title": cty.String}),
		New:  func() any { return new(ModuleConfig) },
	}}
}

// OnEnable implements plugin.Plugin.
func (p *Plugin) OnEnable(r *plugin.Registrar) {
	r.RegisterPass(pass.Func(SummaryPass, model.At(model.StagePost), p.summary))
}

func (p *Plugin) summary(c *pass.Context) bool {
	title := p.settings.Title
	if m, ok := c.Target().Module(ModuleName); ok && m.Err == nil && m.Config != nil {
		title = m.Config.(*ModuleConfig).Title
	}

	props := properties.Of(c)
	c.Logger().Info("Printing build properties", "count", props.Len())

	fmt.Fprintf(p.Out, "%s (%s, build %s)\n", title, c.Runtime(), c.BuildID())
	if props.Len() == 0 {
		fmt.Fprintln(p.Out, "      (none)")
		return true
	}
	for _, k := range props.Keys() {
		v, _ := props.Get(k)
		fmt.Fprintf(p.Out, "      %s = %q\n", k, v)
	}
	return true
}
