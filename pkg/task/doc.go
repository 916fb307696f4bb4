// Package task defines the task surface of the evaluation engine: the Task
// interface, structural task identity, and the construction-time
// validation that keeps bad definitions out of the graph.
//
// A task is an immutable description of one node in an evaluation graph.
// Its identity is a pure function of its name, its named constructor
// arguments, and the identities of its upstream tasks, so structurally
// equal definitions collapse onto one identity and can share memoized
// results. Construction validates that every captured argument survives a
// round trip through the configured Transport and fails fast, naming the
// offending argument, when one does not.
//
// LazyList and LazyFlatten build deferred upstream lists so definitions
// can reference tasks that are declared later; Walk and ValidateAcyclic
// traverse and sanity-check the resulting graph before evaluation.
package task
