package chain

import (
	"context"
	"fmt"

	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/sequence"
)

// replicate clones every module of the reference tree once per thread,
// rebuilds the tree over the clones and restores the bindings between them.
func (c *Chain) replicate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	refModules := c.reference.Modules()
	index := make(map[*module.Module]int, len(refModules))
	for i, m := range refModules {
		index[m] = i
	}
	refTasks := c.reference.Tasks()

	c.trees = make([]*sequence.Tree, c.threads)
	c.modules = make([][]*module.Module, c.threads)

	for tid := range c.threads {
		mods := make([]*module.Module, len(refModules))
		for i, m := range refModules {
			clone, err := m.Clone()
			if err != nil {
				return constructionError("replicate", fmt.Errorf("thread %d: %w", tid, err))
			}
			mods[i] = clone
		}

		resolve := func(t *module.Task) (*module.Task, error) {
			mi, ok := index[t.Module()]
			if !ok {
				return nil, fmt.Errorf("%w: module %s is not part of the traversal", ErrUnresolved, t.Module().Name())
			}
			ti := t.Module().TaskIndex(t)
			if ti < 0 {
				return nil, fmt.Errorf("%w: task %s not found in its module", ErrUnresolved, t)
			}
			return mods[mi].Tasks()[ti], nil
		}

		tree, err := c.reference.Rebind(resolve)
		if err != nil {
			return constructionError("replicate", fmt.Errorf("thread %d: %w", tid, err))
		}

		for _, rt := range refTasks {
			ct, err := resolve(rt)
			if err != nil {
				return constructionError("replicate", fmt.Errorf("thread %d: %w", tid, err))
			}
			if err := rebind(rt, ct, index, mods); err != nil {
				return constructionError("replicate", fmt.Errorf("thread %d: %w", tid, err))
			}
		}

		for _, m := range mods {
			for _, t := range m.Tasks() {
				t.SetAutoAlloc(true)
				for _, s := range t.Sockets() {
					s.Freeze()
				}
			}
		}
		c.trees[tid], c.modules[tid] = tree, mods
		logger.Debug("Replica built.", "thread", tid, "modules", len(mods))
	}
	return nil
}

// rebind binds the consuming sockets of ct the way rt is bound. A producer
// outside the replicated modules cannot be shared, so its current data is
// copied into a buffer private to the replica.
func rebind(rt, ct *module.Task, index map[*module.Module]int, mods []*module.Module) error {
	for si, s := range rt.Sockets() {
		if !s.Direction().Consumes() {
			continue
		}
		cs := ct.Sockets()[si]
		p := s.Producer()
		if p == nil {
			if snap := s.Snapshot(); snap != nil {
				if err := cs.SetBuffer(snap); err != nil {
					return err
				}
			}
			continue
		}
		mi, ok := index[p.Module()]
		if !ok {
			if snap := s.Snapshot(); snap != nil {
				if err := cs.SetBuffer(snap); err != nil {
					return err
				}
			}
			continue
		}
		pti := p.Module().TaskIndex(p.Task())
		if pti < 0 {
			return fmt.Errorf("%w: producer task %s of %s", ErrUnresolved, p.Task(), s)
		}
		ptask := mods[mi].Tasks()[pti]
		if p.Index() >= len(ptask.Sockets()) {
			return fmt.Errorf("%w: producer socket %s of %s", ErrUnresolved, p, s)
		}
		if err := cs.Bind(ptask.Sockets()[p.Index()]); err != nil {
			return err
		}
	}
	return nil
}
