package quiver

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a goroutine.
// Each goroutine has its own context so that independent graphs driven
// from different goroutines do not interfere with each other.
type trackingContext struct {
	// tracker is what's currently tracking dependencies.
	// When a cell is read, it subscribes this tracker.
	// nil means no tracking (reads don't create subscriptions).
	tracker Tracker

	// effect is the effect whose body is currently executing, if any.
	// Effects created while it is set become its children. Kept separate
	// from tracker because Untracked suspends dependency registration
	// without suspending ownership.
	effect *Effect

	// scope is the ambient Scope, set during Scope.Run.
	// Root effects created while it is set are adopted by the scope.
	scope *Scope

	// batchDepth tracks nested Batch() calls.
	// When > 0, writes queue notifications instead of flushing immediately.
	batchDepth int

	// pending accumulates notification entries to run when the outermost
	// batch completes. Deduplicated by ID within each flush round.
	pending []pendingEntry
}

// pendingEntry is one queued notification. The id is the stable identity
// of the originating cell or tracker, used for per-round deduplication.
type pendingEntry struct {
	id  uint64
	run func()
}

// trackingContexts stores per-goroutine tracking contexts.
// Using sync.Map for concurrent access from multiple goroutines.
var trackingContexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine.
// This uses the runtime stack to extract the goroutine ID.
// Note: This is an implementation detail and should not be relied upon externally.
func getGoroutineID() uint64 {
	// Use a buffer to read the stack
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	// Parse the ID from the stack trace
	var id uint64
	for i := 10; i < n; i++ { // Skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine.
// If no context exists, creates a new one.
func getTrackingContext() *trackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// activeTracker returns the tracker currently registering dependencies.
// Returns nil if no tracking is active.
func activeTracker() Tracker {
	return getTrackingContext().tracker
}

// setActiveTracker sets the current tracker for dependency registration.
// Returns the previous tracker so it can be restored.
func setActiveTracker(t Tracker) Tracker {
	ctx := getTrackingContext()
	old := ctx.tracker
	ctx.tracker = t
	return old
}

// WithTracker runs fn with t as the active tracker, restoring the previous
// tracker on every exit path. Cell reads inside fn register t as a
// subscriber. This is the low-level hook custom trackers are built on; most
// code wants NewEffect or NewMemo instead.
func WithTracker(t Tracker, fn func()) {
	old := setActiveTracker(t)
	defer setActiveTracker(old)
	fn()
}

// enqueuePending adds a notification entry to the current goroutine's
// pending queue. Called while a batch (explicit or implicit) is open.
func enqueuePending(id uint64, run func()) {
	ctx := getTrackingContext()
	ctx.pending = append(ctx.pending, pendingEntry{id: id, run: run})
}

// cleanupGoroutineContext removes the tracking context for the current
// goroutine. Optional: contexts are lightweight and are reused when the
// runtime reuses goroutine IDs.
func cleanupGoroutineContext() {
	trackingContexts.Delete(getGoroutineID())
}
