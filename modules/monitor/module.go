// Package monitor provides the bit_monitor unit, which compares decoded bits
// against the reference stream and keeps error counts.
package monitor

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/registry"
)

// Module implements the registry.Unit interface for this package.
type Module struct{}

// Input defines the arguments for bit_monitor.
type Input struct {
	Size int `arg:"size"`
}

// Counters accumulates comparison results. Fields are read by Report from
// another goroutine, so they are atomics.
type Counters struct {
	Bits        atomic.Int64
	BitErrors   atomic.Int64
	Frames      atomic.Int64
	FrameErrors atomic.Int64
}

// Snapshot returns the counters under the keys used by Module.Report.
func (c *Counters) Snapshot() map[string]int64 {
	return map[string]int64{
		"bits":         c.Bits.Load(),
		"bit_errors":   c.BitErrors.Load(),
		"frames":       c.Frames.Load(),
		"frame_errors": c.FrameErrors.Load(),
	}
}

func (c *Counters) reset() {
	c.Bits.Store(0)
	c.BitErrors.Store(0)
	c.Frames.Store(0)
	c.FrameErrors.Store(0)
}

// Build creates a module with task "check" reading the reference bits on
// "ref" and the decoded bits on "dec". The task returns status 1 for a frame
// with at least one error and 0 otherwise.
func Build(_ context.Context, name string, in any) (*module.Module, error) {
	input := in.(*Input)
	if input.Size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %d", input.Size)
	}

	m := module.New(name)
	t := m.CreateTask("check")
	ref := t.CreateInput("ref", module.Int32, input.Size)
	dec := t.CreateInput("dec", module.Int32, input.Size)

	c := new(Counters)
	t.SetCodelet(func(*module.Task) (int, error) {
		want := module.Data[int32](ref)
		var errs int64
		for i, got := range module.Data[int32](dec) {
			if got != want[i] {
				errs++
			}
		}
		c.Bits.Add(int64(len(want)))
		c.BitErrors.Add(errs)
		c.Frames.Add(1)
		if errs > 0 {
			c.FrameErrors.Add(1)
			return 1, nil
		}
		return 0, nil
	})
	m.OnReset(c.reset)
	m.OnReport(c.Snapshot)
	return m, nil
}

// Register registers the unit with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("bit_monitor", &registry.RegisteredUnit{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Build:     Build,
	})
}
