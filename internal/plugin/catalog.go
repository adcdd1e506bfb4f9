package plugin

import (
	"fmt"
	"slices"
)

// Factory creates a fresh plugin instance.
type Factory func() Plugin

// Entry is one registered factory.
type Entry struct {
	Name string
	New  Factory
}

// Catalog is the set of plugin factories known to the process.
type Catalog struct {
	entries    []Entry
	discovered []Entry
	cached     bool
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Register adds a factory. Names must be unique; a duplicate is a
// programming error and panics.
func (c *Catalog) Register(name string, f Factory) {
	if f == nil {
		panic(fmt.Sprintf("plugin factory '%s' is nil", name))
	}
	if slices.ContainsFunc(c.entries, func(e Entry) bool { return e.Name == name }) {
		panic(fmt.Sprintf("plugin factory with name '%s' already registered", name))
	}
	c.entries = append(c.entries, Entry{Name: name, New: f})
}

// Discover returns the factory set in registration order. The first call
// snapshots the set; later calls return the snapshot until Reset.
func (c *Catalog) Discover() []Entry {
	if !c.cached {
		c.discovered = slices.Clone(c.entries)
		c.cached = true
	}
	return slices.Clone(c.discovered)
}

// Reset drops the discovery snapshot so the next Discover sees factories
// registered since. Registrations themselves are kept.
func (c *Catalog) Reset() {
	c.discovered = nil
	c.cached = false
}

// Default is the process-wide catalog used by the buildgrid binary.
var Default = NewCatalog()

// Register adds a factory to the Default catalog.
func Register(name string, f Factory) {
	Default.Register(name, f)
}
