package moduleconfig

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Schema describes how one module kind's config is decoded.
type Schema struct {
	// Name is the moduleName this schema answers to.
	Name string
	// Type is the cty type the config object must conform to.
	Type cty.Type
	// New returns a pointer to a fresh Go value that the decoded config is
	// bound into with gocty. Nil leaves the config as a cty.Value only.
	New func() any
}

// Schemas maps module names to their schemas.
type Schemas struct {
	all map[string]Schema
}

// NewSchemas returns an empty schema set.
func NewSchemas() *Schemas {
	return &Schemas{all: make(map[string]Schema)}
}

// Register adds a schema. Registering the same name twice is a programming
// error and panics.
func (s *Schemas) Register(schema Schema) {
	if schema.Name == "" {
		panic("moduleconfig: schema name must not be empty")
	}
	if _, exists := s.all[schema.Name]; exists {
		panic(fmt.Sprintf("moduleconfig: schema for module '%s' already registered", schema.Name))
	}
	s.all[schema.Name] = schema
}

// Lookup returns the schema registered under name.
func (s *Schemas) Lookup(name string) (Schema, bool) {
	schema, ok := s.all[name]
	return schema, ok
}

// Names returns every registered module name, sorted.
func (s *Schemas) Names() []string {
	names := make([]string, 0, len(s.all))
	for name := range s.all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
