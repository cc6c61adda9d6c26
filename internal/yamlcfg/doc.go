// Package yamlcfg loads chain configuration from YAML files into the
// format-agnostic config model. Argument values are converted to cty so the
// HCL converter decodes them unchanged.
package yamlcfg
