// Package future provides the single-assignment future pair used by the
// evaluation engine: a write-once Promise and its read-side Value.
//
// A Value reaches exactly one terminal state, completed or failed, and
// notifies consumers through callbacks rather than blocking. Callbacks
// registered before the terminal transition run on whichever goroutine
// resolves the value; callbacks registered after it run synchronously on
// the registering goroutine. Await is the only blocking accessor and takes
// a context so callers decide their own timeout policy.
package future
