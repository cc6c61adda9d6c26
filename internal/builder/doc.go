/*
Package builder is responsible for the construction of the processing graph.
It acts as the bridge between the static configuration model (defined in the
'config' package) and the chain engine (the 'chain' package).

The primary artifact produced by this package is a *Graph: bound modules plus
the first and last tasks that delimit the chain.

The graph construction is a multi-phase process:

 1. Module Creation: The builder iterates through the configured modules,
    decodes each one's arguments into the registered unit's input struct and
    calls its constructor. Every module receives a clone factory that repeats
    the construction with the same arguments, which is what per-thread
    replication relies on.

 2. Socket Binding: Each `bind` entry is resolved to a producer and a
    consumer socket and bound. Binding rules (direction, type, size, a single
    producer per input) are enforced by the module package.

 3. Boundary Resolution: The chain's first and last task references are
    resolved.

Upon successful completion, the builder hands the *Graph to the caller,
which creates the chain from it.
*/
package builder
