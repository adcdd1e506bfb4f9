// Package hcl provides the concrete HCL implementation of the configuration
// loading and settings conversion interfaces defined in the `config`
// package. It parses pipeline files, translates them into the agnostic
// model, binds plugin settings onto Go structs, and writes default files.
package hcl
