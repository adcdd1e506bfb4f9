// Package moduleaudit is the core plugin that checks the persisted module
// configs of the build target. Unknown module kinds are reported and left
// untouched; configs that fail their schema fail the build.
package moduleaudit

import (
	"fmt"
	"strconv"

	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/pass"
	"github.com/specialistvlad/buildgrid/internal/plugin"
	"github.com/specialistvlad/buildgrid/internal/report"
	"github.com/specialistvlad/buildgrid/plugins/envvars"
	"github.com/specialistvlad/buildgrid/plugins/properties"
)

const (
	ID        model.Identifier = "buildgrid.moduleaudit"
	CheckPass model.Identifier = "moduleaudit.check"
)

// Report codes.
const (
	CodeUnknownModule = "module-unknown"
	CodeInvalidModule = "module-invalid"
)

// Settings are read from the plugin's block in the pipeline file.
type Settings struct {
	// Strict reports unknown module kinds as warnings instead of info.
	Strict bool `cty:"strict"`
}

// Plugin implements plugin.Plugin.
type Plugin struct {
	settings Settings
}

var (
	_ plugin.Plugin       = (*Plugin)(nil)
	_ plugin.Configurable = (*Plugin)(nil)
)

// New returns the plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() model.Identifier { return ID }
func (p *Plugin) FriendlyName() string { return "Module config audit" }
func (p *Plugin) Settings() any        { return &p.settings }
func (p *Plugin) OnDisable()           {}

// Constraint enables the audit after the environment plugin so its pass
// can rely on captured properties.
func (p *Plugin) Constraint() model.Constraint {
	return model.At(model.StagePre).After(envvars.ID)
}

// OnEnable implements plugin.Plugin.
func (p *Plugin) OnEnable(r *plugin.Registrar) {
	r.RegisterPass(pass.Func(CheckPass, model.At(model.StagePre).After(envvars.CapturePass), p.check))
}

func (p *Plugin) check(c *pass.Context) bool {
	label := string(CheckPass)
	ws := c.Target()
	if ws == nil {
		c.Log(report.SeverityDebug, label, "no workspace attached, nothing to audit")
		return true
	}

	unknownSeverity := report.SeverityInfo
	if p.settings.Strict {
		unknownSeverity = report.SeverityWarning
	}

	ok := true
	known, unknown := 0, 0
	for _, m := range ws.Modules {
		switch {
		case !m.Known():
			unknown++
			c.LogCode(unknownSeverity, label,
				fmt.Sprintf("module '%s' in %s has no registered schema; its config is preserved as-is", m.Name, m.Source),
				CodeUnknownModule)
		case m.Err != nil:
			ok = false
			c.LogCode(report.SeverityError, label, fmt.Sprintf("%s: %v", m.Source, m.Err), CodeInvalidModule)
		default:
			known++
			c.Log(report.SeverityTrace, label, fmt.Sprintf("module '%s' in %s is valid", m.Name, m.Source))
		}
	}

	props := properties.Of(c)
	props.Set("modules.known", strconv.Itoa(known))
	props.Set("modules.unknown", strconv.Itoa(unknown))
	c.Logger().Debug("Module audit finished.", "known", known, "unknown", unknown, "ok", ok)
	return ok
}
