// Package dag resolves pass ordering constraints into one deterministic
// execution order.
//
// A Graph is an arena of nodes keyed by identifier. Nodes never point at each
// other: edges are derived on demand from each node's constraint, so an edge
// is just an identifier pair. A "before X" entry on node N yields N -> X, an
// "after X" entry yields X -> N. References to identifiers that were never
// added are dropped silently; the referenced pass is simply not part of the
// current query.
//
// Sort uses dependency counting. Each round it takes every remaining node
// whose predecessors have all been emitted, in registration order, and
// emits them together. Repeating the same registrations therefore always
// yields the same order. When a round finds nothing ready while nodes remain,
// the remainder contains a cycle and Sort returns a *CycleError instead of a
// partial order.
package dag
