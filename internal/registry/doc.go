// Package registry owns the enabled plugins of one session and answers the
// scheduler's central question: which passes run for runtime R at stage S,
// and in what order.
//
// The Manager is built once per session. Construction discovers the plugin
// factories from a catalog, creates one instance per factory, orders the
// plugins by their plugin-level constraints and calls OnEnable on each, in
// that order. After that the pass set is frozen, so resolved orders are
// cached per (runtime, stage) until the Manager is closed.
//
// Validation after enabling is advisory: constraint references that cannot
// match any registered pass, and runtime tags the pipeline configuration does
// not declare, are logged as warnings. Neither stops the session, because a
// reference to a pass from an absent plugin is legal.
package registry
