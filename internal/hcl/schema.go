package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a chain file may contain.
type fileRoot struct {
	Modules  []*moduleBlock `hcl:"module,block"`
	Bindings []*bindBlock   `hcl:"bind,block"`
	Chains   []*chainBlock  `hcl:"chain,block"`
}

// moduleBlock is `module "<type>" "<name>" { arguments = { ... } }`.
type moduleBlock struct {
	Type      string         `hcl:"type,label"`
	Name      string         `hcl:"name,label"`
	Arguments hcl.Expression `hcl:"arguments,optional"`
}

// bindBlock is `bind { from = "a.t.out"  to = "b.t.in" }`.
type bindBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

// chainBlock is `chain { first = "a.t"  last = "b.t"  threads = 4  passes = 10 }`.
type chainBlock struct {
	First   string `hcl:"first"`
	Last    string `hcl:"last,optional"`
	Threads *int   `hcl:"threads,optional"`
	Passes  int    `hcl:"passes,optional"`
}
