// Package plugin defines the contract third-party code implements to add
// passes to the pipeline, and the catalog through which plugins are made
// known to the process.
//
// Plugins are not discovered by scanning types. Each plugin package calls
// Register (usually from the binary's plugin list) with a factory. The
// registry later asks the catalog to Discover the factory set once, creates
// one instance per factory and calls OnEnable, where the plugin registers its
// passes through the Registrar it is given.
//
// The catalog's discovery cache is process-scoped state with an explicit
// Reset; nothing is cleared implicitly.
package plugin
