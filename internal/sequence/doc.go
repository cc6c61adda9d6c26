// Package sequence partitions a bound task graph into a tree of
// sub-sequences that an executor can drive iteratively.
//
// The tree is stored as an arena: nodes live in one slice and refer to their
// parent and children by index. A standard node runs its tasks in order and
// then its children in order. A loop node holds only the loop task and always
// has two children: the body, re-entered while the loop task says continue,
// and the continuation, run once it says exit.
package sequence
