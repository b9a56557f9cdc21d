// Package registry owns the task graph: the set of registered tasks and the
// directed edges between them.
//
// Tasks live in an arena indexed by small integers; name and action
// lookups are secondary maps into that arena. An edge A -> B means A needs
// B's result, so B runs first. Registering A with Extends(B) records the
// edge B -> A: B becomes a post-hook of A that can consume A's result.
// Only an extends edge can close a cycle, since a new task has no
// dependents of its own.
//
// Every registration is validated in full before the arena is touched, so
// a failed call (duplicate name or action, unknown dependency, cycle)
// leaves the graph exactly as it was.
package registry
