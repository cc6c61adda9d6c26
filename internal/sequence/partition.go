package sequence

import (
	"errors"
	"fmt"

	"github.com/vk/sigchain/internal/module"
)

var (
	ErrNilTask = errors.New("first task is nil")
	// ErrLoopBranch is returned when a loop's continue or exit output does
	// not feed exactly one consumer.
	ErrLoopBranch = errors.New("loop output must have exactly one consumer")
	// ErrUnterminated is returned when the traversal does not end on the
	// declared last task.
	ErrUnterminated = errors.New("traversal does not terminate on the last task")
	// ErrRevisited is returned when a task is reached twice outside a loop,
	// which means the graph has a cycle no loop module controls.
	ErrRevisited = errors.New("task reached twice")
)

// partitioner carries the mutable traversal state through the recursion.
type partitioner struct {
	tree        *Tree
	first, last *module.Task
	loops       map[*module.Task]struct{}
	scheduled   map[*module.Task]struct{}
	lastVisited *module.Task
}

// Partition walks the graph bound downstream of first and returns its
// sub-sequence tree. When last is not nil the traversal stops descending at
// last, and last must be the final task visited.
func Partition(first, last *module.Task) (*Tree, error) {
	if first == nil {
		return nil, ErrNilTask
	}
	p := &partitioner{
		tree:      &Tree{},
		first:     first,
		last:      last,
		loops:     make(map[*module.Task]struct{}),
		scheduled: make(map[*module.Task]struct{}),
	}
	root := p.tree.newNode(-1, Standard)
	if err := p.visit(first, root); err != nil {
		return nil, err
	}
	if last != nil && p.lastVisited != last {
		return nil, fmt.Errorf("%w: expected %s, traversal ended on %s", ErrUnterminated, last, p.lastVisited)
	}
	p.tree.renumber()
	return p.tree, nil
}

func (p *partitioner) visit(task *module.Task, cur int) error {
	if loopTask, cont, exit, ok := task.Module().LoopBranches(); ok && loopTask == task {
		return p.visitLoop(task, cont, exit, cur)
	}

	if _, dup := p.scheduled[task]; dup {
		return fmt.Errorf("%w: %s", ErrRevisited, task)
	}
	p.scheduled[task] = struct{}{}
	p.tree.appendTask(cur, task)
	p.lastVisited = task
	if task == p.last {
		return nil
	}

	for _, s := range task.Sockets() {
		if !s.Direction().Produces() {
			continue
		}
		for _, c := range s.Consumers() {
			next := c.Task()
			if next.IsLastInputSocket(c) || next.Module().IsLoop() {
				if err := p.visit(next, cur); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (p *partitioner) visitLoop(task *module.Task, cont, exit *module.Socket, cur int) error {
	if _, seen := p.loops[task]; seen {
		return nil
	}
	p.loops[task] = struct{}{}

	bodyEntry, err := soleConsumer(cont)
	if err != nil {
		return err
	}
	exitEntry, err := soleConsumer(exit)
	if err != nil {
		return err
	}

	node := cur
	if task == p.first {
		p.tree.nodes[cur].Kind = Loop
	} else {
		node = p.tree.newNode(cur, Loop)
	}
	p.tree.appendTask(node, task)
	p.lastVisited = task

	body := p.tree.newNode(node, Standard)
	if err := p.visit(bodyEntry.Task(), body); err != nil {
		return err
	}
	next := p.tree.newNode(node, Standard)
	return p.visit(exitEntry.Task(), next)
}

func soleConsumer(s *module.Socket) (*module.Socket, error) {
	if n := len(s.Consumers()); n != 1 {
		return nil, fmt.Errorf("%w: %s has %d", ErrLoopBranch, s, n)
	}
	return s.Consumers()[0], nil
}
