// Package memo provides the memoizing evaluation decorator: per-run
// deduplication of task evaluations plus pluggable, per-result-type
// memoization strategies.
//
// Every task identity evaluated through a memoizing Context gets exactly
// one evaluation bundle holding its promise and its strategy. Concurrent
// and repeated evaluations of the same identity collapse onto that bundle,
// so a task's process function runs at most once per run. A strategy
// lookup hit short-circuits evaluation entirely: the task's upstream graph
// is never expanded and the memoized value resolves the bundle directly.
// On a miss the task evaluates normally and a successful result is stored
// back through the strategy before it completes downstream consumers.
//
// Strategies are resolved through a StrategyRegistry, either registered
// explicitly or constructed on first use by a registered Provider. The
// provider outcome is cached per result type, including "no provider",
// which maps to the no-op strategy.
//
// A Context's bundle registry is run state: compose a fresh Context per
// run, or use Layer with eval.NewSession, which does so automatically.
// The StrategyRegistry and the strategies themselves are configuration
// and are typically shared across runs.
//
//	reg := memo.NewStrategyRegistry()
//	reg.Register("WeatherReport", memo.InMemory())
//
//	sess := eval.NewSession(eval.Async(nil), memo.Layer(memo.Config{Strategies: reg}))
//	value := sess.Evaluate(report)
package memo
