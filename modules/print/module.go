// Package print provides the probe unit, which writes the frames passing
// through a socket to standard output.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/registry"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// SetOutput redirects every probe to w and returns a function restoring the
// previous writer.
func SetOutput(w io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return func() {
		mu.Lock()
		defer mu.Unlock()
		out = prev
	}
}

// Module implements the registry.Unit interface for this package.
type Module struct{}

// Input defines the arguments for the probe unit. Limit caps the number of
// elements shown per frame; 0 shows them all.
type Input struct {
	Size     int    `arg:"size"`
	DataType string `arg:"dtype,optional"`
	Limit    int    `arg:"limit,optional"`
}

// Format renders one frame as "name #n: [v0 v1 ...]".
func Format(name string, frame int64, values []float64, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s #%d: [", name, frame)
	shown := values
	if limit > 0 && len(values) > limit {
		shown = values[:limit]
	}
	for i, v := range shown {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	if len(shown) < len(values) {
		fmt.Fprintf(&b, " ... +%d", len(values)-len(shown))
	}
	b.WriteByte(']')
	return b.String()
}

// Build creates a module with task "print" writing every frame read on "in".
func Build(ctx context.Context, name string, in any) (*module.Module, error) {
	input := in.(*Input)
	if input.Size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %d", input.Size)
	}
	if input.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", input.Limit)
	}
	dtype, err := module.ParseDataType(input.DataType)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Creating probe.", "name", name, "dtype", dtype)

	m := module.New(name)
	t := m.CreateTask("print")
	src := t.CreateInput("in", dtype, input.Size)

	var frame int64
	t.SetCodelet(func(*module.Task) (int, error) {
		line := Format(name, frame, module.Float64s(src), input.Limit)
		frame++
		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintln(out, line)
		return 0, err
	})
	m.OnReset(func() { frame = 0 })
	return m, nil
}

// Register registers the unit with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("probe", &registry.RegisteredUnit{
		NewInput:  func() any { return &Input{DataType: "int32"} },
		InputType: reflect.TypeOf(Input{}),
		Build:     Build,
	})
}
