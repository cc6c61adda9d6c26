package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/sigchain/internal/address"
	"github.com/vk/sigchain/internal/config"
	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/registry"
)

var (
	ErrUnknownUnit   = errors.New("unknown unit type")
	ErrUnknownModule = errors.New("unknown module")
	ErrUnknownTask   = errors.New("unknown task")
	ErrUnknownSocket = errors.New("unknown socket")
)

// Graph is the built, bound set of modules of one configuration.
type Graph struct {
	Modules []*module.Module
	First   *module.Task
	Last    *module.Task
	Threads int
	Passes  int

	byName map[string]*module.Module
}

// Module returns the module named name, or nil.
func (g *Graph) Module(name string) *module.Module { return g.byName[name] }

// Builder turns a config.Model into a Graph using the units of a registry.
type Builder struct {
	registry *registry.Registry
}

// New creates a builder over reg.
func New(reg *registry.Registry) *Builder {
	return &Builder{registry: reg}
}

// Build runs all construction phases. The model is expected to have passed
// config.Validate.
func (b *Builder) Build(ctx context.Context, model *config.Model, conv config.Converter) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building processing graph.", "modules", len(model.Modules), "bindings", len(model.Bindings))

	g := &Graph{
		Threads: model.Chain.Threads,
		Passes:  model.Chain.Passes,
		byName:  make(map[string]*module.Module, len(model.Modules)),
	}

	for _, mc := range model.Modules {
		m, err := b.createModule(ctx, mc, conv)
		if err != nil {
			return nil, err
		}
		g.Modules = append(g.Modules, m)
		g.byName[mc.Name] = m
	}
	logger.Debug("Modules created.", "count", len(g.Modules))

	for _, bc := range model.Bindings {
		if err := g.bind(bc); err != nil {
			return nil, err
		}
	}
	logger.Debug("Sockets bound.", "count", len(model.Bindings))

	var err error
	if g.First, err = g.task(model.Chain.First); err != nil {
		return nil, fmt.Errorf("chain first: %w", err)
	}
	if model.Chain.Last != "" {
		if g.Last, err = g.task(model.Chain.Last); err != nil {
			return nil, fmt.Errorf("chain last: %w", err)
		}
	}

	logger.Info("Processing graph built.", "first", g.First.String(), "threads", g.Threads, "passes", g.Passes)
	return g, nil
}

// createModule decodes the arguments of one configured module and builds it.
func (b *Builder) createModule(ctx context.Context, mc *config.Module, conv config.Converter) (*module.Module, error) {
	unit, ok := b.registry.Lookup(mc.Type)
	if !ok {
		return nil, fmt.Errorf("module %q: %w %q", mc.Name, ErrUnknownUnit, mc.Type)
	}

	var input any
	if unit.NewInput != nil {
		input = unit.NewInput()
		if err := conv.DecodeArguments(ctx, mc.Arguments, input); err != nil {
			return nil, fmt.Errorf("module %q (%s): %w", mc.Name, mc.Type, err)
		}
	} else if len(mc.Arguments) > 0 {
		return nil, fmt.Errorf("module %q (%s): unit takes no arguments", mc.Name, mc.Type)
	}

	m, err := unit.Build(ctx, mc.Name, input)
	if err != nil {
		return nil, fmt.Errorf("module %q (%s): %w", mc.Name, mc.Type, err)
	}
	m.SetFactory(func() (*module.Module, error) {
		return unit.Build(ctx, mc.Name, input)
	})
	return m, nil
}

func (g *Graph) bind(bc *config.Binding) error {
	from, err := g.socket(bc.From)
	if err != nil {
		return fmt.Errorf("bind from: %w", err)
	}
	to, err := g.socket(bc.To)
	if err != nil {
		return fmt.Errorf("bind to: %w", err)
	}
	if err := to.Bind(from); err != nil {
		return fmt.Errorf("bind %s -> %s: %w", bc.From, bc.To, err)
	}
	return nil
}

func (g *Graph) task(ref string) (*module.Task, error) {
	a, err := address.ParseTask(ref)
	if err != nil {
		return nil, err
	}
	return g.resolveTask(a)
}

func (g *Graph) socket(ref string) (*module.Socket, error) {
	a, err := address.ParseSocket(ref)
	if err != nil {
		return nil, err
	}
	t, err := g.resolveTask(a)
	if err != nil {
		return nil, err
	}
	s := t.Socket(a.Socket)
	if s == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownSocket, a.String())
	}
	return s, nil
}

func (g *Graph) resolveTask(a address.Address) (*module.Task, error) {
	m := g.byName[a.Module]
	if m == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownModule, a.Module)
	}
	t := m.Task(a.Task)
	if t == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownTask, a.TaskRef().String())
	}
	return t, nil
}
