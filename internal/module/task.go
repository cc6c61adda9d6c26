package module

import (
	"fmt"
	"time"
)

// Codelet is the work a task performs on each execution. The returned status
// is handed to stop predicates; loop tasks use it to choose a branch.
type Codelet func(t *Task) (int, error)

// Stats accumulates per-task execution counters.
type Stats struct {
	Calls uint64
	Total time.Duration
}

// Average is the mean duration of one call.
func (s Stats) Average() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// Task is an atomic unit of work inside a Module.
type Task struct {
	name      string
	module    *Module
	sockets   []*Socket
	codelet   Codelet
	autoalloc bool
	stats     bool
	counters  Stats
}

func (t *Task) Name() string       { return t.name }
func (t *Task) Module() *Module    { return t.module }
func (t *Task) Sockets() []*Socket { return t.sockets }

// Socket looks up a socket by name.
func (t *Task) Socket(name string) *Socket {
	for _, s := range t.sockets {
		if s.name == name {
			return s
		}
	}
	return nil
}

// CreateSocket declares a new socket on the task. Output sockets receive an
// owned buffer immediately when autoalloc is on.
func (t *Task) CreateSocket(name string, dir Direction, dtype DataType, size int) *Socket {
	if t.Socket(name) != nil {
		panic(fmt.Sprintf("module: socket %q declared twice on task %s", name, t))
	}
	if size <= 0 {
		panic(fmt.Sprintf("module: socket %q on task %s must carry at least one element", name, t))
	}
	s := &Socket{name: name, dir: dir, dtype: dtype, size: size, task: t, index: len(t.sockets)}
	t.sockets = append(t.sockets, s)
	if t.autoalloc && dir == Out {
		s.allocate()
	}
	return s
}

// CreateInput declares an input socket.
func (t *Task) CreateInput(name string, dtype DataType, size int) *Socket {
	return t.CreateSocket(name, In, dtype, size)
}

// CreateOutput declares an output socket.
func (t *Task) CreateOutput(name string, dtype DataType, size int) *Socket {
	return t.CreateSocket(name, Out, dtype, size)
}

// CreateInOut declares a socket that reads its producer's buffer and exposes
// it, modified in place, to its own consumers.
func (t *Task) CreateInOut(name string, dtype DataType, size int) *Socket {
	return t.CreateSocket(name, InOut, dtype, size)
}

// SetCodelet installs the work function.
func (t *Task) SetCodelet(c Codelet) { t.codelet = c }

// AutoAlloc reports whether the task owns its output buffers.
func (t *Task) AutoAlloc() bool { return t.autoalloc }

// SetAutoAlloc allocates owned buffers for every output socket, or releases
// them when turned off.
func (t *Task) SetAutoAlloc(on bool) {
	t.autoalloc = on
	for _, s := range t.sockets {
		if s.dir != Out {
			continue
		}
		if on {
			s.allocate()
		} else {
			s.release()
		}
	}
}

// SetStats turns call counting and timing on or off.
func (t *Task) SetStats(on bool) { t.stats = on }

// StatsEnabled reports whether the task records counters.
func (t *Task) StatsEnabled() bool { return t.stats }

// Stats returns the counters accumulated since the last ResetStats.
func (t *Task) Stats() Stats { return t.counters }

// ResetStats zeroes the counters.
func (t *Task) ResetStats() { t.counters = Stats{} }

// IsLastInputSocket reports whether s is the last consuming socket declared
// on the task. A task becomes reachable during traversal only through this
// socket, so a join point is visited once, after all of its producers.
func (t *Task) IsLastInputSocket(s *Socket) bool {
	for i := len(t.sockets) - 1; i >= 0; i-- {
		if t.sockets[i].dir.Consumes() {
			return t.sockets[i] == s
		}
	}
	return false
}

// Execute runs the codelet once. A panic inside the codelet is returned as an
// error wrapping ErrTaskPanic.
func (t *Task) Execute() (status int, err error) {
	if t.codelet == nil {
		return 0, fmt.Errorf("%w: %s", ErrNoCodelet, t)
	}
	for _, s := range t.sockets {
		if !s.optional && s.Buffer() == nil {
			return 0, fmt.Errorf("%w: %s", ErrNoBuffer, s)
		}
	}
	defer func() {
		if r := recover(); r != nil {
			status, err = 0, fmt.Errorf("%w: %s: %v", ErrTaskPanic, t, r)
		}
	}()

	var start time.Time
	if t.stats {
		start = time.Now()
	}
	status, err = t.codelet(t)
	if t.stats {
		t.counters.Calls++
		t.counters.Total += time.Since(start)
	}
	if err != nil {
		return status, fmt.Errorf("%s: %w", t, err)
	}
	return status, nil
}

// String renders the task as module.task.
func (t *Task) String() string {
	if t.module == nil {
		return t.name
	}
	return t.module.name + "." + t.name
}
