package module

import (
	"errors"
	"fmt"
)

// Role tags what the engine should do with a Module's tasks.
type Role uint8

const (
	// RoleStandard modules are scheduled as plain tasks.
	RoleStandard Role = iota
	// RoleLoop modules control iteration: their single task picks a
	// continue or exit branch on every call.
	RoleLoop
)

func (r Role) String() string {
	if r == RoleLoop {
		return "loop"
	}
	return "standard"
}

// Factory builds a fresh, unbound instance of a module. Clone relies on it.
type Factory func() (*Module, error)

// Module owns one or more Tasks and is the unit of cloning.
type Module struct {
	name    string
	role    Role
	tasks   []*Task
	factory Factory
	resets  []func()
	seeder  func(seed uint64)
	closers []func() error
	report  func() map[string]int64

	loopTask     *Task
	loopContinue *Socket
	loopExit     *Socket
}

// New creates an empty standard module.
func New(name string) *Module {
	return &Module{name: name}
}

func (m *Module) Name() string     { return m.name }
func (m *Module) Role() Role       { return m.role }
func (m *Module) Tasks() []*Task   { return m.tasks }
func (m *Module) IsLoop() bool     { return m.role == RoleLoop }
func (m *Module) SetName(n string) { m.name = n }

// Task looks up a task by name.
func (m *Module) Task(name string) *Task {
	for _, t := range m.tasks {
		if t.name == name {
			return t
		}
	}
	return nil
}

// TaskIndex returns the position of t in the module, or -1.
func (m *Module) TaskIndex(t *Task) int {
	for i, own := range m.tasks {
		if own == t {
			return i
		}
	}
	return -1
}

// CreateTask declares a new task. Tasks start with autoalloc on.
func (m *Module) CreateTask(name string) *Task {
	if m.Task(name) != nil {
		panic(fmt.Sprintf("module: task %q declared twice on module %s", name, m.name))
	}
	t := &Task{name: name, module: m, autoalloc: true}
	m.tasks = append(m.tasks, t)
	return t
}

// SetFactory installs the constructor used by Clone.
func (m *Module) SetFactory(f Factory) { m.factory = f }

// OnReset registers a hook run by Reset.
func (m *Module) OnReset(fn func()) { m.resets = append(m.resets, fn) }

// Reset re-arms the module's internal iteration state.
func (m *Module) Reset() {
	for _, fn := range m.resets {
		fn()
	}
}

// OnSeed registers the hook run by Seed. Modules without randomness leave it unset.
func (m *Module) OnSeed(fn func(seed uint64)) { m.seeder = fn }

// Seed reseeds the module's random state, if it has any.
func (m *Module) Seed(seed uint64) bool {
	if m.seeder == nil {
		return false
	}
	m.seeder(seed)
	return true
}

// OnClose registers a hook run by Close, e.g. to release a connection.
func (m *Module) OnClose(fn func() error) { m.closers = append(m.closers, fn) }

// Close runs the close hooks and joins their errors.
func (m *Module) Close() error {
	var errs []error
	for _, fn := range m.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnReport registers the function that exposes the module's counters.
func (m *Module) OnReport(fn func() map[string]int64) { m.report = fn }

// Report returns the module's counters, or nil when it keeps none.
func (m *Module) Report() map[string]int64 {
	if m.report == nil {
		return nil
	}
	return m.report()
}

// LoopBranches exposes the iteration-control capability: the module's single
// task and its continue and exit outputs. ok is false for standard modules.
func (m *Module) LoopBranches() (task *Task, cont, exit *Socket, ok bool) {
	if m.role != RoleLoop {
		return nil, nil, nil, false
	}
	return m.loopTask, m.loopContinue, m.loopExit, true
}

// markLoop promotes the module to RoleLoop.
func (m *Module) markLoop(t *Task, cont, exit *Socket) {
	m.role = RoleLoop
	m.loopTask, m.loopContinue, m.loopExit = t, cont, exit
}

// Clone builds a structurally identical, unbound copy of the module through
// its factory. Task flags are carried over; bindings are not.
func (m *Module) Clone() (*Module, error) {
	if m.factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotClonable, m.name)
	}
	c, err := m.factory()
	if err != nil {
		return nil, fmt.Errorf("cloning module %s: %w", m.name, err)
	}
	if c.factory == nil {
		c.factory = m.factory
	}
	c.name = m.name
	if err := sameShape(m, c); err != nil {
		return nil, err
	}
	for i, t := range m.tasks {
		c.tasks[i].SetAutoAlloc(t.autoalloc)
		c.tasks[i].stats = t.stats
	}
	return c, nil
}

// sameShape checks that two modules declare the same tasks and sockets.
func sameShape(a, b *Module) error {
	if a.role != b.role {
		return fmt.Errorf("%w: %s role %s vs %s", ErrCloneMismatch, a.name, a.role, b.role)
	}
	if len(a.tasks) != len(b.tasks) {
		return fmt.Errorf("%w: %s has %d tasks, clone has %d", ErrCloneMismatch, a.name, len(a.tasks), len(b.tasks))
	}
	for i, ta := range a.tasks {
		tb := b.tasks[i]
		if ta.name != tb.name || len(ta.sockets) != len(tb.sockets) {
			return fmt.Errorf("%w: task %s vs %s", ErrCloneMismatch, ta, tb)
		}
		for j, sa := range ta.sockets {
			sb := tb.sockets[j]
			if sa.name != sb.name || sa.dir != sb.dir || sa.dtype != sb.dtype || sa.size != sb.size {
				return fmt.Errorf("%w: socket %s vs %s", ErrCloneMismatch, sa, sb)
			}
		}
	}
	return nil
}
