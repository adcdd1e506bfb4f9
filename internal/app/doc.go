// Package app contains the core application logic. It wires the pipeline
// configuration, plugin registry, executor, order monitor and report stream
// together, decoupled from any specific entrypoint like a CLI.
package app
