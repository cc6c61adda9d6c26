package chain

import "sync"

// failureLog collects task errors from all threads. Failures sharing a
// signature are coalesced, keeping the longest message.
type failureLog struct {
	mu    sync.Mutex
	order []string
	bySig map[string]Failure
}

func (l *failureLog) record(f Failure) {
	sig := signature(f)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bySig == nil {
		l.bySig = make(map[string]Failure)
	}
	prev, seen := l.bySig[sig]
	if !seen {
		l.order = append(l.order, sig)
		l.bySig[sig] = f
		return
	}
	if len(f.Err.Error()) > len(prev.Err.Error()) {
		l.bySig[sig] = f
	}
}

// drain empties the log and returns its content as an ExecError, or nil when
// nothing was captured.
func (l *failureLog) drain() *ExecError {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.order) == 0 {
		return nil
	}
	out := &ExecError{Failures: make([]Failure, 0, len(l.order))}
	for _, sig := range l.order {
		f := l.bySig[sig]
		out.Failures = append(out.Failures, f)
		if msg := f.Err.Error(); len(msg) > len(out.Message) {
			out.Message = msg
		}
	}
	l.order, l.bySig = nil, nil
	return out
}
