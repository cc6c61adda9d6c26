package module

import "errors"

var (
	// ErrAmbiguousBinding is returned when an input socket would receive a
	// second producer.
	ErrAmbiguousBinding = errors.New("input socket already bound to a producer")
	// ErrIncompatibleSockets is returned when two sockets differ in element
	// type or element count.
	ErrIncompatibleSockets = errors.New("incompatible sockets")
	// ErrDirection is returned when a binding goes against socket directions.
	ErrDirection     = errors.New("invalid socket direction for binding")
	ErrFrozen        = errors.New("socket bindings are frozen")
	ErrNoBuffer      = errors.New("socket has no buffer")
	ErrNoCodelet     = errors.New("task has no codelet")
	ErrTaskPanic     = errors.New("task panicked")
	ErrNotClonable   = errors.New("module has no clone constructor")
	ErrCloneMismatch = errors.New("cloned module is not structurally identical")
	ErrBufferType    = errors.New("buffer does not match socket type")
)
