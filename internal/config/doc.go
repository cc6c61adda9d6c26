// Package config defines the format-agnostic configuration model for a
// processing chain, along with the core interfaces (Loader, Converter) for
// loading and interpreting configuration from various sources.
//
// The `config.Model` is the single source of truth for the `builder`
// package. Concrete implementations of the interfaces, such as for HCL and
// YAML, are provided in separate packages.
package config
