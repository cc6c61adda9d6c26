/*
Package address provides a structured representation for references to
tasks and sockets in chain configuration files.

The format is a dot-separated path of two or three segments:
`module.task` names a task, `module.task.socket` names one of its sockets.
*/
package address
