package plugin

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/moduleconfig"
	"github.com/specialistvlad/buildgrid/internal/pass"
)

// Plugin is a named bundle of passes.
type Plugin interface {
	// ID uniquely names the plugin.
	ID() model.Identifier
	// FriendlyName is shown to humans.
	FriendlyName() string
	// Constraint orders this plugin against other plugins by plugin ID. Only
	// the before and after edges are used; they decide the enable order.
	Constraint() model.Constraint
	// OnEnable registers the plugin's passes. Called exactly once.
	OnEnable(r *Registrar)
	// OnDisable is called exactly once when the registry is torn down.
	OnDisable()
}

// SchemaProvider is implemented by plugins that own persisted module
// configuration kinds.
type SchemaProvider interface {
	ModuleSchemas() []moduleconfig.Schema
}

// Configurable is implemented by plugins that accept settings from the
// pipeline file. Settings returns a pointer to a struct whose fields carry
// `cty` tags; it is filled in before OnEnable.
type Configurable interface {
	Settings() any
}

// Printer is implemented by plugins that write human-readable output. The
// host calls SetOutput before OnEnable.
type Printer interface {
	SetOutput(w io.Writer)
}

// Registrar collects the passes one plugin registers during OnEnable.
type Registrar struct {
	owner  model.Identifier
	logger *slog.Logger
	open   bool
	passes map[model.Identifier]pass.Pass
	order  []model.Identifier
}

// NewRegistrar returns a registrar for the plugin owner. It accepts passes
// only between Open and Seal.
func NewRegistrar(owner model.Identifier, logger *slog.Logger) *Registrar {
	return &Registrar{
		owner:  owner,
		logger: logger,
		passes: make(map[model.Identifier]pass.Pass),
	}
}

// Open allows RegisterPass calls.
func (r *Registrar) Open() { r.open = true }

// Seal rejects further RegisterPass calls.
func (r *Registrar) Seal() { r.open = false }

// Owner returns the plugin the registrar belongs to.
func (r *Registrar) Owner() model.Identifier { return r.owner }

// RegisterPass adds p to the plugin's passes. A second pass with the same
// identifier replaces the first. Calling it outside OnEnable panics.
func (r *Registrar) RegisterPass(p pass.Pass) {
	if !r.open {
		panic(fmt.Sprintf("plugin '%s': RegisterPass called outside OnEnable", r.owner))
	}
	id := p.ID()
	if id == "" {
		panic(fmt.Sprintf("plugin '%s': pass of type %T has an empty identifier", r.owner, p))
	}
	if _, exists := r.passes[id]; exists {
		r.logger.Debug("Replacing previously registered pass.", "plugin", string(r.owner), "pass", string(id))
	} else {
		r.order = append(r.order, id)
	}
	r.logger.Debug("Registering pass.", "plugin", string(r.owner), "pass", string(id), "constraint", p.Constraint().String())
	r.passes[id] = p
}

// Passes returns the registered passes in first-registration order.
func (r *Registrar) Passes() []pass.Pass {
	out := make([]pass.Pass, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.passes[id])
	}
	return out
}
