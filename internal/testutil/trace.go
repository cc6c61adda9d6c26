package testutil

import "sync"

// Trace records the order in which test units execute. It is shared by all
// replicas of a unit, so it is only meaningful for single-thread chains or
// when read as a multiset.
type Trace struct {
	mu      sync.Mutex
	entries []string
}

// Add appends an entry.
func (tr *Trace) Add(entry string) {
	if tr == nil {
		return
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.entries = append(tr.entries, entry)
}

// Entries returns a copy of the recorded entries.
func (tr *Trace) Entries() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.entries...)
}

// Count returns how many times entry was recorded.
func (tr *Trace) Count(entry string) int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	n := 0
	for _, e := range tr.entries {
		if e == entry {
			n++
		}
	}
	return n
}

// Reset forgets all entries.
func (tr *Trace) Reset() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.entries = nil
}
