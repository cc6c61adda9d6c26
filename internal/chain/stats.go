package chain

import "github.com/vk/sigchain/internal/module"

// TaskStats is the sum of one task's counters across all replicas.
type TaskStats struct {
	Task string
	module.Stats
}

// SetStats turns counters on or off for every replica task.
func (c *Chain) SetStats(on bool) {
	c.ForEachModule(func(_ int, m *module.Module) {
		for _, t := range m.Tasks() {
			t.SetStats(on)
		}
	})
}

// Stats returns per-task counters in execution order. Call it only while no
// Exec is running.
func (c *Chain) Stats() []TaskStats {
	out := make([]TaskStats, c.reference.TaskCount())
	for i, t := range c.reference.Tasks() {
		out[i].Task = t.String()
	}
	for _, tree := range c.trees {
		for i, t := range tree.Tasks() {
			s := t.Stats()
			out[i].Calls += s.Calls
			out[i].Total += s.Total
		}
	}
	return out
}
