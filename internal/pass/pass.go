package pass

import (
	"path"
	"reflect"

	"github.com/specialistvlad/buildgrid/internal/model"
)

// Pass is one unit of build work.
type Pass interface {
	// ID returns the identifier other passes use to order against this one.
	ID() model.Identifier
	// Constraint returns the stage, runtime restriction and ordering edges.
	Constraint() model.Constraint
	// Invoke runs the pass. Returning false marks the build failed without
	// stopping sibling passes.
	Invoke(c *Context) bool
}

// DefaultID derives an identifier from the dynamic type of v, in the form
// "<package>.<Type>". Pointer types are unwrapped.
func DefaultID(v any) model.Identifier {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	if t.Name() == "" {
		return model.Identifier(t.String())
	}
	return model.Identifier(path.Base(t.PkgPath()) + "." + t.Name())
}

// funcPass adapts a plain function into a Pass.
type funcPass struct {
	id         model.Identifier
	constraint model.Constraint
	fn         func(c *Context) bool
}

// Func builds a Pass from an identifier, constraint and function.
func Func(id model.Identifier, constraint model.Constraint, fn func(c *Context) bool) Pass {
	return &funcPass{id: id, constraint: constraint, fn: fn}
}

func (p *funcPass) ID() model.Identifier         { return p.id }
func (p *funcPass) Constraint() model.Constraint { return p.constraint }
func (p *funcPass) Invoke(c *Context) bool       { return p.fn(c) }
