package sequence

import (
	"fmt"

	"github.com/vk/sigchain/internal/module"
)

// Kind tags a sub-sequence node.
type Kind uint8

const (
	Standard Kind = iota
	Loop
)

func (k Kind) String() string {
	if k == Loop {
		return "loop"
	}
	return "standard"
}

// Body and Continuation index the two children of a loop node.
const (
	Body         = 0
	Continuation = 1
)

// Node is one sub-sequence. TaskIDs holds, for each task, its position in the
// execution order of the whole tree: a node's own tasks, then its children.
type Node struct {
	ID       int
	Kind     Kind
	Depth    int
	Parent   int
	Children []int
	Tasks    []*module.Task
	TaskIDs  []int
}

// Tree is an arena of sub-sequence nodes. Node 0 is the root.
type Tree struct {
	nodes  []Node
	ntasks int
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Root returns the root node.
func (t *Tree) Root() *Node { return &t.nodes[0] }

// Node returns the node at index i.
func (t *Tree) Node(i int) *Node { return &t.nodes[i] }

// TaskCount is the number of task slots, which sizes status vectors.
func (t *Tree) TaskCount() int { return t.ntasks }

// newNode appends a node under parent (-1 for the root) and returns its index.
func (t *Tree) newNode(parent int, kind Kind) int {
	n := Node{ID: len(t.nodes), Kind: kind, Parent: parent}
	if parent >= 0 {
		n.Depth = t.nodes[parent].Depth + 1
	}
	t.nodes = append(t.nodes, n)
	idx := len(t.nodes) - 1
	if parent >= 0 {
		t.nodes[parent].Children = append(t.nodes[parent].Children, idx)
	}
	return idx
}

// appendTask adds a task to node i and gives it the next provisional id.
func (t *Tree) appendTask(i int, task *module.Task) {
	t.nodes[i].Tasks = append(t.nodes[i].Tasks, task)
	t.nodes[i].TaskIDs = append(t.nodes[i].TaskIDs, t.ntasks)
	t.ntasks++
}

// renumber reassigns TaskIDs in execution order. A sibling appended to a
// node after one of its children was created is visited late but runs
// before that child.
func (t *Tree) renumber() {
	id := 0
	t.Walk(func(n *Node) bool {
		for j := range n.TaskIDs {
			n.TaskIDs[j] = id
			id++
		}
		return true
	})
}

// Walk visits nodes in preorder. Returning false from fn skips the subtree.
func (t *Tree) Walk(fn func(n *Node) bool) {
	if len(t.nodes) == 0 {
		return
	}
	t.walk(0, fn)
}

func (t *Tree) walk(i int, fn func(n *Node) bool) {
	n := &t.nodes[i]
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		t.walk(c, fn)
	}
}

// Tasks lists every task in execution order.
func (t *Tree) Tasks() []*module.Task {
	tasks := make([]*module.Task, t.ntasks)
	for i := range t.nodes {
		for j, task := range t.nodes[i].Tasks {
			tasks[t.nodes[i].TaskIDs[j]] = task
		}
	}
	return tasks
}

// Modules lists the distinct modules owning the tree's tasks, in order of
// first appearance in execution order.
func (t *Tree) Modules() []*module.Module {
	seen := make(map[*module.Module]struct{})
	var mods []*module.Module
	for _, task := range t.Tasks() {
		m := task.Module()
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		mods = append(mods, m)
	}
	return mods
}

// Rebind returns a tree with the same shape whose tasks are substituted by
// resolve.
func (t *Tree) Rebind(resolve func(*module.Task) (*module.Task, error)) (*Tree, error) {
	out := &Tree{nodes: make([]Node, len(t.nodes)), ntasks: t.ntasks}
	for i, n := range t.nodes {
		c := n
		c.Children = append([]int(nil), n.Children...)
		c.TaskIDs = append([]int(nil), n.TaskIDs...)
		c.Tasks = make([]*module.Task, len(n.Tasks))
		for j, task := range n.Tasks {
			r, err := resolve(task)
			if err != nil {
				return nil, fmt.Errorf("node %d task %s: %w", n.ID, task, err)
			}
			c.Tasks[j] = r
		}
		out.nodes[i] = c
	}
	return out, nil
}

// Equal reports whether two trees share the same shape and task names.
func (t *Tree) Equal(o *Tree) bool {
	if len(t.nodes) != len(o.nodes) || t.ntasks != o.ntasks {
		return false
	}
	for i := range t.nodes {
		a, b := &t.nodes[i], &o.nodes[i]
		if a.ID != b.ID || a.Kind != b.Kind || a.Depth != b.Depth || a.Parent != b.Parent ||
			len(a.Children) != len(b.Children) || len(a.Tasks) != len(b.Tasks) {
			return false
		}
		for j := range a.Children {
			if a.Children[j] != b.Children[j] {
				return false
			}
		}
		for j := range a.Tasks {
			if a.Tasks[j].String() != b.Tasks[j].String() || a.TaskIDs[j] != b.TaskIDs[j] {
				return false
			}
		}
	}
	return true
}
