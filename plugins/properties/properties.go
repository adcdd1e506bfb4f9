// Package properties is the build-wide key/value store that core plugins
// share through pass.Feature.
package properties

import (
	"sort"

	"github.com/specialistvlad/buildgrid/internal/pass"
)

// Properties holds string properties collected during one build.
type Properties struct {
	values map[string]string
}

// Init implements pass.Initializer.
func (p *Properties) Init(*pass.Context) {
	p.values = make(map[string]string)
}

// Set stores value under key, replacing any earlier value.
func (p *Properties) Set(key, value string) {
	p.values[key] = value
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Len returns the number of properties.
func (p *Properties) Len() int { return len(p.values) }

// Keys returns every key in sorted order.
func (p *Properties) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Of returns the build's Properties.
func Of(c *pass.Context) *Properties {
	return pass.Feature[Properties](c)
}
