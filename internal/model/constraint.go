// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Constraint, the ordering declaration a pass carries into
// the scheduler.
//
// A Constraint is a value type whose slices are never shared with callers:
// every builder method returns a new Constraint with its own backing arrays,
// and every accessor returns a copy. Once a pass hands its constraint to the
// registry, nothing can mutate it.

package model

import (
	"fmt"
	"slices"
	"strings"
)

// Constraint declares where and when a pass runs relative to its siblings.
type Constraint struct {
	stage    Stage
	runtimes []Runtime
	before   []Identifier
	after    []Identifier
}

// At starts a constraint for the given stage, valid for every runtime and
// with no ordering edges.
func At(stage Stage) Constraint {
	return Constraint{stage: stage}
}

// On restricts the constraint to the given runtimes. Calling On with no
// arguments leaves the restriction unchanged.
func (c Constraint) On(runtimes ...Runtime) Constraint {
	out := c.clone()
	out.runtimes = dedupe(append(out.runtimes, runtimes...))
	return out
}

// Before adds "this pass must run before ids" edges.
func (c Constraint) Before(ids ...Identifier) Constraint {
	out := c.clone()
	out.before = dedupe(append(out.before, ids...))
	return out
}

// After adds "this pass must run after ids" edges.
func (c Constraint) After(ids ...Identifier) Constraint {
	out := c.clone()
	out.after = dedupe(append(out.after, ids...))
	return out
}

// Stage returns the stage the pass runs in.
func (c Constraint) Stage() Stage { return c.stage }

// Runtimes returns the runtime restriction. An empty result means "all".
func (c Constraint) Runtimes() []Runtime { return slices.Clone(c.runtimes) }

// BeforeIDs returns the identifiers this pass must precede.
func (c Constraint) BeforeIDs() []Identifier { return slices.Clone(c.before) }

// AfterIDs returns the identifiers this pass must follow.
func (c Constraint) AfterIDs() []Identifier { return slices.Clone(c.after) }

// AllRuntimes reports whether the constraint carries no runtime restriction.
func (c Constraint) AllRuntimes() bool { return len(c.runtimes) == 0 }

// AppliesTo reports whether a pass with this constraint is valid for rt.
func (c Constraint) AppliesTo(rt Runtime) bool {
	return c.AllRuntimes() || slices.Contains(c.runtimes, rt)
}

// Matches reports whether the constraint selects the pass for a query at
// the given runtime and stage.
func (c Constraint) Matches(rt Runtime, stage Stage) bool {
	return c.stage == stage && c.AppliesTo(rt)
}

// References returns every identifier named by a before or after edge,
// before-edges first, in declaration order.
func (c Constraint) References() []Identifier {
	return dedupe(append(slices.Clone(c.before), c.after...))
}

// String implements fmt.Stringer.
func (c Constraint) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "stage=%s", c.stage)
	if !c.AllRuntimes() {
		rts := make([]string, len(c.runtimes))
		for i, r := range c.runtimes {
			rts[i] = string(r)
		}
		fmt.Fprintf(&sb, " runtimes=[%s]", strings.Join(rts, ","))
	}
	if len(c.before) > 0 {
		fmt.Fprintf(&sb, " before=%v", c.before)
	}
	if len(c.after) > 0 {
		fmt.Fprintf(&sb, " after=%v", c.after)
	}
	return sb.String()
}

func (c Constraint) clone() Constraint {
	return Constraint{
		stage:    c.stage,
		runtimes: slices.Clone(c.runtimes),
		before:   slices.Clone(c.before),
		after:    slices.Clone(c.after),
	}
}
