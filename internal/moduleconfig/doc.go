// Package moduleconfig reads and writes the per-module configuration that is
// persisted alongside the objects a pass operates on.
//
// On disk every module is a tagged union:
//
//	{ "moduleName": "<name>", "config": { ... } }
//
// moduleName selects the Schema whose cty type the config object is decoded
// against. A moduleName with no registered schema is kept as opaque bytes and
// written back exactly as it was read, so files produced by newer plugins
// survive a round trip through an older binary.
package moduleconfig
