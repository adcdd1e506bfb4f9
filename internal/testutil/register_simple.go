package testutil

import (
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/pass"
	"github.com/specialistvlad/buildgrid/internal/plugin"
	"github.com/specialistvlad/buildgrid/internal/report"
)

// Trace records the order in which things happened across fakes.
type Trace struct {
	Events []string
}

// Add appends an event.
func (t *Trace) Add(event string) {
	if t != nil {
		t.Events = append(t.Events, event)
	}
}

// SimplePlugin is a fake plugin that registers a fixed list of passes and
// records its lifecycle calls.
type SimplePlugin struct {
	Name     model.Identifier
	Order    model.Constraint
	Passes   []pass.Pass
	Trace    *Trace
	Enables  int
	Disables int
}

// ID implements plugin.Plugin.
func (p *SimplePlugin) ID() model.Identifier { return p.Name }

// FriendlyName implements plugin.Plugin.
func (p *SimplePlugin) FriendlyName() string { return "Test plugin " + string(p.Name) }

// Constraint implements plugin.Plugin.
func (p *SimplePlugin) Constraint() model.Constraint { return p.Order }

// OnEnable implements plugin.Plugin.
func (p *SimplePlugin) OnEnable(r *plugin.Registrar) {
	p.Enables++
	p.Trace.Add("enable:" + string(p.Name))
	for _, ps := range p.Passes {
		r.RegisterPass(ps)
	}
}

// OnDisable implements plugin.Plugin.
func (p *SimplePlugin) OnDisable() {
	p.Disables++
	p.Trace.Add("disable:" + string(p.Name))
}

// Catalog returns a catalog whose factories hand out the given instances.
func Catalog(plugins ...plugin.Plugin) *plugin.Catalog {
	c := plugin.NewCatalog()
	for _, p := range plugins {
		c.Register(string(p.ID()), func() plugin.Plugin { return p })
	}
	return c
}

// RecordingPass returns a pass that appends "run:<id>" to trace and returns ok.
func RecordingPass(id model.Identifier, c model.Constraint, trace *Trace, ok bool) pass.Pass {
	return pass.Func(id, c, func(*pass.Context) bool {
		trace.Add("run:" + string(id))
		return ok
	})
}

// ErrorPass returns a pass that logs an Error entry and returns false.
func ErrorPass(id model.Identifier, c model.Constraint, trace *Trace) pass.Pass {
	return pass.Func(id, c, func(ctx *pass.Context) bool {
		trace.Add("run:" + string(id))
		ctx.Log(report.SeverityError, string(id), "intentional failure")
		return false
	})
}

// PanicPass returns a pass that panics with value.
func PanicPass(id model.Identifier, c model.Constraint, trace *Trace, value any) pass.Pass {
	return pass.Func(id, c, func(*pass.Context) bool {
		trace.Add("run:" + string(id))
		panic(value)
	})
}
