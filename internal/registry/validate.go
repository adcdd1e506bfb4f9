package registry

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/buildgrid/internal/model"
)

// Validate checks the enabled pass set for likely authoring mistakes and
// returns one message per finding. It never fails: every finding is legal
// but suspicious.
//
// It reports:
//   - before/after references that match no pass registered at the same
//     stage by any enabled plugin (usually a typo or a missing plugin);
//   - runtime restrictions naming runtimes that Options.Runtimes does not
//     declare, when Options.Runtimes is set.
func (m *Manager) Validate() []string {
	var warnings []string

	stageOf := make(map[model.Identifier]model.Stage)
	for _, e := range m.plugins {
		for _, p := range e.registrar.Passes() {
			stageOf[p.ID()] = p.Constraint().Stage()
		}
	}

	for _, e := range m.plugins {
		for _, p := range e.registrar.Passes() {
			c := p.Constraint()
			for _, ref := range c.References() {
				refStage, ok := stageOf[ref]
				switch {
				case !ok:
					warnings = append(warnings, fmt.Sprintf("pass '%s' (plugin '%s'): references unknown pass '%s'", p.ID(), e.plugin.ID(), ref))
				case refStage != c.Stage():
					warnings = append(warnings, fmt.Sprintf("pass '%s' (plugin '%s'): references pass '%s' at stage '%s', but ordering only applies within stage '%s'", p.ID(), e.plugin.ID(), ref, refStage, c.Stage()))
				}
			}
			if len(m.opts.Runtimes) == 0 {
				continue
			}
			for _, rt := range c.Runtimes() {
				if !slices.Contains(m.opts.Runtimes, rt) {
					warnings = append(warnings, fmt.Sprintf("pass '%s' (plugin '%s'): restricted to undeclared runtime '%s'", p.ID(), e.plugin.ID(), rt))
				}
			}
		}
	}
	return warnings
}
