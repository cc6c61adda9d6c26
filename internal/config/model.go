package config

import (
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of a chain file set:
// the module instances, the socket bindings between them, and the chain
// boundaries.
type Model struct {
	Modules  []*Module  `validate:"required,min=1,dive,required"`
	Bindings []*Binding `validate:"dive,required"`
	Chain    *Chain     `validate:"required"`
}

// Module is one processing unit instance, e.g. a `module "lcg_source" "src"`
// block.
type Module struct {
	Type      string `validate:"required"`
	Name      string `validate:"required,segment"`
	Arguments map[string]cty.Value
}

// Binding connects the output socket From to the input socket To. Both are
// `module.task.socket` addresses.
type Binding struct {
	From string `validate:"required,socketaddr"`
	To   string `validate:"required,socketaddr"`
}

// Chain delimits the executed graph and sets its parallelism. Last may be
// empty, in which case every reachable task is executed. Passes is the
// number of passes each thread runs, zero meaning until interrupted.
type Chain struct {
	First   string `validate:"required,taskaddr"`
	Last    string `validate:"omitempty,taskaddr"`
	Threads int    `validate:"min=1"`
	Passes  int    `validate:"min=0"`
}

// Module returns the module named name, or nil.
func (m *Model) Module(name string) *Module {
	for _, mod := range m.Modules {
		if mod.Name == name {
			return mod
		}
	}
	return nil
}
