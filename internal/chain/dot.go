package chain

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/sequence"
)

var recordEscaper = strings.NewReplacer(
	`\`, `\\`, `"`, `\"`, `{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`,
)

// ExportDOT writes a Graphviz description of the sub-sequence tree and its
// socket bindings. Identifiers come from traversal indices, so the output is
// stable for a given graph. It only reads thread 0's replica.
func (c *Chain) ExportDOT(w io.Writer) error {
	tree := c.trees[0]
	ids := make(map[*module.Task]int, tree.TaskCount())
	for i, t := range tree.Tasks() {
		ids[t] = i
	}

	var b strings.Builder
	b.WriteString("digraph chain {\n\tcompound=true;\n\tnode [shape=record];\n")
	writeCluster(&b, tree, 0, 1)
	for _, t := range tree.Tasks() {
		for _, s := range t.Sockets() {
			p := s.Producer()
			if p == nil {
				continue
			}
			pid, ok := ids[p.Task()]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "\ttask%d:s%d -> task%d:s%d;\n", pid, p.Index(), ids[t], s.Index())
		}
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCluster(b *strings.Builder, tree *sequence.Tree, i, depth int) {
	n := tree.Node(i)
	indent := strings.Repeat("\t", depth)
	fmt.Fprintf(b, "%ssubgraph cluster_%d {\n", indent, n.ID)
	fmt.Fprintf(b, "%s\tlabel=\"%s #%d (depth %d)\";\n", indent, n.Kind, n.ID, n.Depth)
	if n.Kind == sequence.Loop {
		fmt.Fprintf(b, "%s\tstyle=dashed;\n", indent)
	}
	for j, t := range n.Tasks {
		fmt.Fprintf(b, "%s\ttask%d [label=\"%s\"];\n", indent, n.TaskIDs[j], recordLabel(t))
	}
	for _, child := range n.Children {
		writeCluster(b, tree, child, depth+1)
	}
	fmt.Fprintf(b, "%s}\n", indent)
}

// recordLabel lays a task out as inputs | name | outputs. In/out sockets sit
// on the output side.
func recordLabel(t *module.Task) string {
	var ins, outs []string
	for _, s := range t.Sockets() {
		port := fmt.Sprintf("<s%d> %s", s.Index(), recordEscaper.Replace(s.Name()))
		if s.Direction() == module.In {
			ins = append(ins, port)
		} else {
			outs = append(outs, port)
		}
	}
	return fmt.Sprintf("{{%s}|%s|{%s}}",
		strings.Join(ins, "|"), recordEscaper.Replace(t.String()), strings.Join(outs, "|"))
}
