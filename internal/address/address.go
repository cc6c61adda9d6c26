package address

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrEmpty   = errors.New("address cannot be empty")
	ErrSegment = errors.New("invalid address segment")
	ErrArity   = errors.New("wrong number of address segments")
)

// segmentRegex matches a single segment such as `lcg` or `bpsk-mod_2`.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Address points at a task, or at a socket when Socket is set.
type Address struct {
	Module string
	Task   string
	Socket string
}

// IsSocket reports whether the address names a socket.
func (a Address) IsSocket() bool { return a.Socket != "" }

// TaskRef returns the address with its socket segment dropped.
func (a Address) TaskRef() Address { return Address{Module: a.Module, Task: a.Task} }

// String serializes the address into its canonical form.
func (a Address) String() string {
	if a.Socket == "" {
		return a.Module + "." + a.Task
	}
	return a.Module + "." + a.Task + "." + a.Socket
}

// Parse accepts both task and socket addresses.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, ErrEmpty
	}

	parts := strings.Split(raw, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Address{}, fmt.Errorf("%w: %q has %d, want module.task[.socket]", ErrArity, raw, len(parts))
	}
	for _, p := range parts {
		if !isValidSegment(p) {
			return Address{}, fmt.Errorf("%w: %q in %q", ErrSegment, p, raw)
		}
	}

	a := Address{Module: parts[0], Task: parts[1]}
	if len(parts) == 3 {
		a.Socket = parts[2]
	}
	return a, nil
}

// ParseTask parses a `module.task` address.
func ParseTask(raw string) (Address, error) {
	a, err := Parse(raw)
	if err != nil {
		return Address{}, err
	}
	if a.IsSocket() {
		return Address{}, fmt.Errorf("%w: %q is a socket address, want module.task", ErrArity, raw)
	}
	return a, nil
}

// ParseSocket parses a `module.task.socket` address.
func ParseSocket(raw string) (Address, error) {
	a, err := Parse(raw)
	if err != nil {
		return Address{}, err
	}
	if !a.IsSocket() {
		return Address{}, fmt.Errorf("%w: %q is a task address, want module.task.socket", ErrArity, raw)
	}
	return a, nil
}

func isValidSegment(s string) bool {
	if s == "-" || s == "" {
		return false
	}
	return segmentRegex.MatchString(s)
}
