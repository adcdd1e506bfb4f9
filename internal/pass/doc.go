// Package pass defines the unit of build work and the context it runs in.
//
// A Pass has a stable identifier, an immutable constraint, and an Invoke
// method. Invoke reports expected failures through the context's report and
// returns false; it never panics for conditions a plugin author can foresee.
// The runner recovers anything that does escape.
//
// The Context also owns the build's feature cache. Feature[T] returns the
// single *T for the build, constructing it on first use.
package pass
