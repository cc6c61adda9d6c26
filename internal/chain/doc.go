// Package chain turns a bound task graph into a thread-replicated execution
// engine.
//
// New partitions the graph reachable from a first task into a sub-sequence
// tree, then clones every module once per thread and rebinds the clones, so
// that each thread owns an isolated copy of the graph. Exec drives all copies
// concurrently until a stop predicate is satisfied. A task failure on any
// thread raises a shared cancellation flag. All threads finish their current
// pass and the richest captured failure is returned once they have joined.
package chain
