package dag

import (
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/buildgrid/internal/model"
)

// node is one entry of the arena. order is the position of the first Add
// for this identifier and is the tie-breaker for Sort.
type node struct {
	id         model.Identifier
	constraint model.Constraint
	order      int
}

// Reference is a constraint edge whose target was never added to the graph.
type Reference struct {
	Owner  model.Identifier
	Target model.Identifier
	Before bool // true for a "before" entry, false for "after"
}

// String implements fmt.Stringer.
func (r Reference) String() string {
	kind := "after"
	if r.Before {
		kind = "before"
	}
	return fmt.Sprintf("%s %s %s", r.Owner, kind, r.Target)
}

// Graph is a directed graph over pass identifiers.
type Graph struct {
	mutex sync.RWMutex
	nodes map[model.Identifier]*node
	next  int
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[model.Identifier]*node),
	}
}

// Add registers a node. Adding an identifier twice replaces its constraint
// but keeps its original registration position.
func (g *Graph) Add(id model.Identifier, c model.Constraint) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if n, ok := g.nodes[id]; ok {
		n.constraint = c
		return
	}
	g.nodes[id] = &node{id: id, constraint: c, order: g.next}
	g.next++
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Has reports whether id was added.
func (g *Graph) Has(id model.Identifier) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// Unresolved returns every constraint reference whose target is absent from
// the graph. These edges are ignored by Sort.
func (g *Graph) Unresolved() []Reference {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var refs []Reference
	for _, n := range g.ordered() {
		for _, target := range n.constraint.BeforeIDs() {
			if _, ok := g.nodes[target]; !ok {
				refs = append(refs, Reference{Owner: n.id, Target: target, Before: true})
			}
		}
		for _, target := range n.constraint.AfterIDs() {
			if _, ok := g.nodes[target]; !ok {
				refs = append(refs, Reference{Owner: n.id, Target: target})
			}
		}
	}
	return refs
}

// Dependencies returns the identifiers that must run before id, in
// registration order.
func (g *Graph) Dependencies(id model.Identifier) ([]model.Identifier, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	preds, _ := g.edges()
	deps := make([]model.Identifier, 0, len(preds[id]))
	for _, n := range g.ordered() {
		if _, ok := preds[id][n.id]; ok {
			deps = append(deps, n.id)
		}
	}
	return deps, nil
}

// IsResolved reports whether the graph, with dangling references dropped,
// admits a topological order.
func (g *Graph) IsResolved() bool {
	_, err := g.Sort()
	return err == nil
}

// Sort returns the nodes in a deterministic topological order, or a
// *CycleError if some nodes can never become ready.
func (g *Graph) Sort() ([]model.Identifier, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	preds, succs := g.edges()
	pending := make(map[model.Identifier]int, len(g.nodes))
	for id, p := range preds {
		pending[id] = len(p)
	}

	remaining := g.ordered()
	out := make([]model.Identifier, 0, len(remaining))
	for len(remaining) > 0 {
		var ready, blocked []*node
		for _, n := range remaining {
			if pending[n.id] == 0 {
				ready = append(ready, n)
			} else {
				blocked = append(blocked, n)
			}
		}
		if len(ready) == 0 {
			ids := make([]model.Identifier, len(blocked))
			for i, n := range blocked {
				ids[i] = n.id
			}
			return nil, &CycleError{Remaining: ids}
		}
		for _, n := range ready {
			out = append(out, n.id)
			for succ := range succs[n.id] {
				pending[succ]--
			}
		}
		remaining = blocked
	}
	return out, nil
}

// edges derives predecessor and successor sets from the node constraints.
// A node naming itself keeps the self edge, which Sort reports as a cycle.
// Callers must hold the lock.
func (g *Graph) edges() (preds, succs map[model.Identifier]map[model.Identifier]struct{}) {
	preds = make(map[model.Identifier]map[model.Identifier]struct{}, len(g.nodes))
	succs = make(map[model.Identifier]map[model.Identifier]struct{}, len(g.nodes))
	for id := range g.nodes {
		preds[id] = make(map[model.Identifier]struct{})
		succs[id] = make(map[model.Identifier]struct{})
	}

	link := func(from, to model.Identifier) {
		succs[from][to] = struct{}{}
		preds[to][from] = struct{}{}
	}
	for id, n := range g.nodes {
		for _, target := range n.constraint.BeforeIDs() {
			if _, ok := g.nodes[target]; ok {
				link(id, target)
			}
		}
		for _, source := range n.constraint.AfterIDs() {
			if _, ok := g.nodes[source]; ok {
				link(source, id)
			}
		}
	}
	return preds, succs
}

// ordered returns the nodes sorted by registration order. Callers must hold
// the lock.
func (g *Graph) ordered() []*node {
	out := make([]*node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *node) int { return a.order - b.order })
	return out
}
