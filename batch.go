package quiver

import (
	"fmt"
	"log"
	"time"
)

// DebugMode enables debug logging throughout the quiver package.
// When true, operations like TxNamed log transaction boundaries.
// This should be set at startup and not changed during runtime.
var DebugMode bool

// Batch groups multiple writes into a single notification phase.
// Writes inside the batch enqueue their notifications; when the outermost
// batch completes, the queue drains in rounds until empty. Within a round
// each cell or tracker is notified at most once, and re-entrant writes made
// by a notified tracker land in the next round of the same flush.
//
// Batches nest: only the outermost call flushes. A panic inside fn
// propagates, but the depth is restored, and at the outermost level the
// notifications enqueued before the panic still flush on the unwind.
//
// Example:
//
//	quiver.Batch(func() {
//	    firstName.Set("Ada")
//	    lastName.Set("Lovelace")
//	    age.Set(36)
//	})
//	// effects reading any of the three re-run once
func Batch(fn func()) {
	ctx := getTrackingContext()
	ctx.batchDepth++

	defer func() {
		defer func() { ctx.batchDepth-- }()
		if ctx.batchDepth == 1 {
			drainPending(ctx)
		}
	}()

	fn()
}

// BatchValue runs fn inside a batch and returns its result.
func BatchValue[T any](fn func() T) T {
	var v T
	Batch(func() {
		v = fn()
	})
	return v
}

// drainPending flushes the queue in rounds: snapshot, clear, invoke each
// entry once (deduplicated by ID within the round), repeat until nothing
// new was enqueued. The loop is unbounded unless a FlushBudget is set: it
// converges for acyclic graphs, and an effect that unconditionally rewrites
// its own dependency diverges, which is a caller error.
func drainPending(ctx *trackingContext) {
	if len(ctx.pending) == 0 {
		return
	}

	// A panic mid-flush, from a notified body or a budget in panic mode,
	// must not leave ghost entries behind for the next flush on this
	// goroutine.
	defer func() {
		if r := recover(); r != nil {
			ctx.pending = nil
			panic(r)
		}
	}()

	budget := flushBudget
	timed := instrumentsOn.Load()
	var started time.Time
	if timed {
		started = time.Now()
		emitFlushStart(ctx.batchDepth)
	}

	rounds := 0
	entries := 0
	for len(ctx.pending) > 0 {
		if budget != nil && !budget.admitRound(rounds, entries) {
			ctx.pending = nil
			break
		}

		round := ctx.pending
		ctx.pending = nil
		rounds++

		seen := make(map[uint64]struct{}, len(round))
		for _, p := range round {
			if _, dup := seen[p.id]; dup {
				continue
			}
			seen[p.id] = struct{}{}
			entries++
			p.run()
		}

		if Debug.LogFlushRounds {
			log.Printf("[quiver] flush round %d: %d entries, %d queued", rounds, len(round), len(ctx.pending))
		}
	}

	if budget != nil {
		budget.noteFlush(rounds, entries)
	}
	noteFlush(rounds)
	if timed {
		emitFlushEnd(rounds, entries, time.Since(started))
	}
}

// Untracked runs fn with dependency registration suspended: cell reads
// inside do not subscribe the active tracker. Registration resumes for
// nested tracked regions: a memo evaluated inside fn still tracks its own
// dependencies.
//
// For a single read, prefer cell.Peek().
func Untracked(fn func()) {
	old := setActiveTracker(nil)
	defer setActiveTracker(old)
	fn()
}

// UntrackedValue runs fn untracked and returns its result.
func UntrackedValue[T any](fn func() T) T {
	var v T
	Untracked(func() {
		v = fn()
	})
	return v
}

// Tx runs fn as a transaction. Alias for Batch, for call sites that read
// better in transaction terms.
func Tx(fn func()) {
	Batch(fn)
}

// TxNamed runs fn as a named transaction. The name is logged in debug mode
// for tracing which transactions trigger which flushes.
//
//	quiver.TxNamed("import-orders", func() {
//	    orders.Set(next)
//	    cursor.Set(pos)
//	})
func TxNamed(name string, fn func()) {
	if DebugMode {
		fmt.Printf("[TX] %s start\n", name)
		defer fmt.Printf("[TX] %s end\n", name)
	}
	Batch(fn)
}
