// Package hcl provides the concrete HCL implementation for the configuration
// loading and data conversion interfaces defined in the `config` package.
// It is responsible for file parsing, HCL-to-model translation, and
// cty-to-Go argument binding. The converter is format-neutral and is shared
// with the YAML loader.
package hcl
