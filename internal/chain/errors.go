package chain

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

var (
	ErrThreads    = errors.New("thread count must be at least 1")
	ErrThreadID   = errors.New("thread id out of range")
	ErrUnresolved = errors.New("unresolved reference during replication")
)

// ConstructionError is returned by New and Clone. It records the call site
// that detected the problem.
type ConstructionError struct {
	Op   string
	Func string
	File string
	Line int
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("chain %s failed (%s:%d in %s): %v", e.Op, e.File, e.Line, e.Func, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// constructionError wraps err with the location of its caller.
func constructionError(op string, err error) error {
	ce := &ConstructionError{Op: op, Err: err}
	if pc, file, line, ok := runtime.Caller(1); ok {
		ce.File, ce.Line = filepath.Base(file), line
		if fn := runtime.FuncForPC(pc); fn != nil {
			ce.Func = fn.Name()[strings.LastIndex(fn.Name(), "/")+1:]
		}
	}
	return ce
}

// Failure is one task error captured during Exec. Task is the failing task
// as module.task.
type Failure struct {
	Thread int
	Pass   int
	Task   string
	Err    error
}

// ExecError aggregates the failures of one Exec call. Message is the most
// detailed text captured; Failures holds one entry per distinct signature.
type ExecError struct {
	Message  string
	Failures []Failure
}

func (e *ExecError) Error() string { return e.Message }

// Unwrap exposes every captured error to errors.Is and errors.As.
func (e *ExecError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

var digits = regexp.MustCompile(`[0-9]+`)

// signature identifies a failure by its task, kept verbatim, and its error
// text with digits normalized, so that failures of one task differing only in
// counters, indices or addresses coalesce.
func signature(f Failure) string {
	msg := strings.TrimPrefix(f.Err.Error(), f.Task+": ")
	return f.Task + "|" + digits.ReplaceAllString(msg, "#")
}
