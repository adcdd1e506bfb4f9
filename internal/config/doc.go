// Package config defines the format-agnostic pipeline configuration model,
// along with the interfaces (Loader, Converter) for loading it and binding
// plugin settings from it.
//
// The `config.Model` is the single source of truth for the `app` package.
// Concrete implementations of the interfaces, such as for HCL, are provided
// in separate packages.
package config
