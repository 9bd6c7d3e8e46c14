// Package quiver is a fine-grained reactive-state engine.
//
// It provides three primitives that keep derived computations and side
// effects consistent with a set of mutable sources of truth:
//
//   - Signal[T]: a mutable value container. Reading it inside a tracked
//     context subscribes the reader; writing it notifies subscribers when
//     the value actually changed.
//   - Memo[T]: a cached computation over other cells. It recomputes lazily
//     when unobserved and eagerly when something downstream depends on it.
//   - Effect: a side effect that runs immediately and re-runs whenever any
//     signal or memo it read during its last run changes.
//
// Dependencies are discovered at read time: there is no subscription
// wiring. An effect that reads count.Get() on one run and not on the next
// is subscribed to count on the first run and not on the second.
//
//	count := quiver.NewSignal(0)
//	double := quiver.NewMemo(func() int { return count.Get() * 2 })
//
//	quiver.NewEffect(func() quiver.Cleanup {
//	    fmt.Println("double is", double.Get())
//	    return nil
//	})
//	// prints "double is 0"
//
//	count.Set(3)
//	// prints "double is 6"
//
// # Batching
//
// Batch groups writes so that subscribers observe only the final state:
//
//	quiver.Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
//	// effects reading both re-run once
//
// Propagation is glitch-free: in a diamond-shaped graph (two memos over
// one signal, one effect over both memos), the effect never observes one
// fresh and one stale value. Writes outside a batch get the same guarantee
// through an implicit single-write batch.
//
// # Ownership
//
// An effect owns every effect created synchronously during its run.
// Disposing the parent disposes the children recursively. Root effects are
// owned by whoever holds the handle, or by a Scope when created inside
// Scope.Run.
//
// # Threading
//
// The engine is synchronous and single-threaded per dependency graph.
// Tracking state is goroutine-local, so independent graphs on different
// goroutines do not interfere, but a single graph must only be mutated
// from one goroutine.
package quiver
