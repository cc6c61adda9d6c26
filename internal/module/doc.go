// Package module defines the data-flow primitives the engine schedules:
// typed Sockets, the Tasks that own them, and the Modules that own Tasks.
//
// A graph is assembled by binding consumer sockets to producer sockets.
// Consumers borrow their producer's buffer, so no data is copied along an
// edge. Bindings are mutable until a socket is frozen, which happens when a
// Chain takes ownership of a replicated graph.
package module
