package module

import (
	"fmt"
	"reflect"
)

// Direction classifies a socket as a consumer, a producer, or both.
type Direction uint8

const (
	In Direction = iota
	Out
	InOut
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "in_out"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Consumes reports whether sockets of this direction read from a producer.
func (d Direction) Consumes() bool { return d == In || d == InOut }

// Produces reports whether sockets of this direction feed consumers.
func (d Direction) Produces() bool { return d == Out || d == InOut }

// Socket is a named, typed data port on a Task.
type Socket struct {
	name     string
	dir      Direction
	dtype    DataType
	size     int
	task     *Task
	index    int
	optional bool

	buf   any
	owned bool

	producer  *Socket
	consumers []*Socket
	frozen    bool
}

func (s *Socket) Name() string         { return s.name }
func (s *Socket) Direction() Direction { return s.dir }
func (s *Socket) DataType() DataType   { return s.dtype }

// Size is the number of elements carried per execution.
func (s *Socket) Size() int { return s.size }

// Task returns the task owning the socket.
func (s *Socket) Task() *Task { return s.task }

// Module returns the module owning the socket's task.
func (s *Socket) Module() *Module { return s.task.module }

// Index is the position of the socket in its task's socket list.
func (s *Socket) Index() int { return s.index }

// Producer returns the socket this one reads from, or nil when unbound.
func (s *Socket) Producer() *Socket { return s.producer }

// Consumers returns the sockets reading from this one, in binding order.
func (s *Socket) Consumers() []*Socket { return s.consumers }

// IsBound reports whether the socket has a producer.
func (s *Socket) IsBound() bool { return s.producer != nil }

// Frozen reports whether the socket's bindings are read-only.
func (s *Socket) Frozen() bool { return s.frozen }

// Freeze makes the socket's bindings read-only.
func (s *Socket) Freeze() { s.frozen = true }

// Owned reports whether the socket holds a buffer it allocated itself.
func (s *Socket) Owned() bool { return s.owned }

// Buffer returns the data the socket currently exposes. A bound consumer
// exposes its producer's buffer.
func (s *Socket) Buffer() any {
	if s.producer != nil {
		return s.producer.Buffer()
	}
	return s.buf
}

// SetBuffer attaches a caller-owned buffer. The buffer must be a slice of the
// socket's element type with exactly Size elements.
func (s *Socket) SetBuffer(buf any) error {
	if !s.dtype.matches(buf, s.size) {
		return fmt.Errorf("%w: %s wants %d x %s, got %T", ErrBufferType, s, s.size, s.dtype, buf)
	}
	s.buf = buf
	s.owned = false
	return nil
}

// Bind makes s read from producer.
func (s *Socket) Bind(producer *Socket) error {
	if s.frozen || producer.frozen {
		return fmt.Errorf("%w: %s <- %s", ErrFrozen, s, producer)
	}
	if !s.dir.Consumes() || !producer.dir.Produces() {
		return fmt.Errorf("%w: %s (%s) <- %s (%s)", ErrDirection, s, s.dir, producer, producer.dir)
	}
	if s.dtype != producer.dtype || s.size != producer.size {
		return fmt.Errorf("%w: %s is %d x %s, %s is %d x %s",
			ErrIncompatibleSockets, s, s.size, s.dtype, producer, producer.size, producer.dtype)
	}
	if s.producer != nil {
		if s.producer == producer {
			return nil
		}
		return fmt.Errorf("%w: %s already reads from %s, cannot also read from %s",
			ErrAmbiguousBinding, s, s.producer, producer)
	}
	s.producer = producer
	producer.consumers = append(producer.consumers, s)
	return nil
}

// Unbind detaches s from its producer.
func (s *Socket) Unbind() error {
	if s.producer == nil {
		return nil
	}
	if s.frozen || s.producer.frozen {
		return fmt.Errorf("%w: %s", ErrFrozen, s)
	}
	p := s.producer
	for i, c := range p.consumers {
		if c == s {
			p.consumers = append(p.consumers[:i], p.consumers[i+1:]...)
			break
		}
	}
	s.producer = nil
	return nil
}

// String renders the socket as module.task.socket.
func (s *Socket) String() string {
	if s.task == nil {
		return s.name
	}
	return s.task.String() + "." + s.name
}

// allocate gives the socket an owned buffer if it has none.
func (s *Socket) allocate() {
	if s.buf == nil {
		s.buf = s.dtype.alloc(s.size)
		s.owned = true
	}
}

// release drops an owned buffer.
func (s *Socket) release() {
	if s.owned {
		s.buf = nil
		s.owned = false
	}
}

// Snapshot returns a private copy of the data the socket currently exposes,
// or nil when it has none.
func (s *Socket) Snapshot() any {
	buf := s.Buffer()
	if buf == nil {
		return nil
	}
	src := reflect.ValueOf(buf)
	dst := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
	reflect.Copy(dst, src)
	return dst.Interface()
}
