package testutil

import (
	"fmt"

	"github.com/vk/sigchain/internal/module"
)

// StageFunc computes a stage's outputs from its inputs.
type StageFunc func(ins, outs [][]int32) (int, error)

// NewStage builds a one-task module with task "run", int32 sockets in0..
// and out0.. of size elements, recording its name into trace on every call.
// fn may be nil, in which case outputs are left untouched and the status is 0.
// Clones share trace and fn.
func NewStage(name string, trace *Trace, inputs, outputs, size int, fn StageFunc) *module.Module {
	m := module.New(name)
	t := m.CreateTask("run")
	ins := make([]*module.Socket, inputs)
	outs := make([]*module.Socket, outputs)
	for i := range ins {
		ins[i] = t.CreateInput(fmt.Sprintf("in%d", i), module.Int32, size)
	}
	for i := range outs {
		outs[i] = t.CreateOutput(fmt.Sprintf("out%d", i), module.Int32, size)
	}
	t.SetCodelet(func(*module.Task) (int, error) {
		trace.Add(name)
		if fn == nil {
			return 0, nil
		}
		return fn(views(ins), views(outs))
	})
	m.SetFactory(func() (*module.Module, error) {
		return NewStage(name, trace, inputs, outputs, size, fn), nil
	})
	return m
}

func views(sockets []*module.Socket) [][]int32 {
	out := make([][]int32, len(sockets))
	for i, s := range sockets {
		out[i] = module.Data[int32](s)
	}
	return out
}

// NewCounterSource builds a module "name" with task "generate" whose output
// "out" holds seed+k in every element on its k-th call (k from 0). The seed
// hook restarts the sequence at the new seed.
func NewCounterSource(name string, trace *Trace, size int, seed int32) *module.Module {
	m := module.New(name)
	t := m.CreateTask("generate")
	out := t.CreateOutput("out", module.Int32, size)
	next := seed
	t.SetCodelet(func(*module.Task) (int, error) {
		trace.Add(name)
		for i, v := 0, module.Data[int32](out); i < len(v); i++ {
			v[i] = next
		}
		next++
		return 0, nil
	})
	m.OnSeed(func(s uint64) { next = int32(s) })
	m.OnReset(func() { next = seed })
	m.SetFactory(func() (*module.Module, error) {
		return NewCounterSource(name, trace, size, seed), nil
	})
	return m
}

// NewFault builds a pass-through stage "name" (task "run", in0 -> out0) that
// returns err on its failAt-th call, counted from 1 per replica. Reset
// restarts the count.
func NewFault(name string, size, failAt int, err error) *module.Module {
	calls := 0
	return newFault(name, size, failAt, err, &calls)
}

func newFault(name string, size, failAt int, err error, calls *int) *module.Module {
	m := NewStage(name, nil, 1, 1, size, func(ins, outs [][]int32) (int, error) {
		*calls++
		if *calls == failAt {
			return 0, err
		}
		copy(outs[0], ins[0])
		return 0, nil
	})
	m.OnReset(func() { *calls = 0 })
	m.SetFactory(func() (*module.Module, error) {
		fresh := 0
		return newFault(name, size, failAt, err, &fresh), nil
	})
	return m
}

// Bind wires to.task.in to from.task.out, panicking on error. Test graphs
// are static, so a failure is a bug in the test.
func Bind(to *module.Module, toTask, in string, from *module.Module, fromTask, out string) {
	if err := to.Task(toTask).Socket(in).Bind(from.Task(fromTask).Socket(out)); err != nil {
		panic(err)
	}
}
