// Package stores provides durable memoization backends. It includes a
// SQLite-based store with WAL mode and connection pooling that persists
// task results across runs and processes, exposed to the evaluation
// engine as per-result-type memoization strategies.
package stores
