// Package registry provides the central "glue" for the unit system.
//
// The Registry maps the unit type names used in chain files (e.g.
// "lcg_source") to the compiled Go constructors that build the modules, and
// to the argument structs those constructors expect.
//
// During application startup the registry is populated and then validated,
// so that a unit whose argument struct cannot be bound from configuration
// is reported before any chain file is read.
package registry
