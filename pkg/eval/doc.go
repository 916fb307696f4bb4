// Package eval defines the evaluation protocol of the engine and its root
// implementations.
//
// A Context is a pipeline of decorators around a root context. The root
// does the real work: it expands a task's upstream dependencies, evaluates
// them recursively, and invokes the task's process function once every
// input is ready. Decorators wrap the root to add memoization,
// observability, or any other cross-cutting behavior, overriding only the
// operations they care about and forwarding the rest through
// ForwardingContext.
//
// Recursive expansion always re-enters the outermost context, so every
// decorator sees every task in the graph. Composition order is therefore
// part of a pipeline's observable behavior: an observability layer outside
// a memoization layer sees short-circuited tasks, one inside it does not.
//
// Evaluation never blocks and never raises: results and failures travel
// exclusively through future values. A Session scopes one evaluation run,
// composing a fresh pipeline so per-run state is never shared.
package eval
