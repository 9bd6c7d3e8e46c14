package quiver

// Tracker is anything that consumes cell values reactively. Memos and
// effects are trackers: while one is active, every signal or memo read
// registers the tracker as a subscriber of the cell being read.
type Tracker interface {
	// Notify tells the tracker that one of its dependencies changed.
	// For memos this marks the cached value stale (and recomputes it
	// immediately when the memo is observed). For effects this re-runs
	// the body.
	Notify()

	// ID returns a unique identifier for this tracker.
	// Used for membership records and flush-queue deduplication.
	ID() uint64

	// AddCleanup registers a release thunk on the tracker. Cells use this
	// to hand the tracker the removal of the registration just made, so
	// that running the tracker's cleanups before a re-run leaves the
	// dependency set accurate to the most recent execution.
	AddCleanup(fn func())
}

// Cleanup is a function returned by an effect body to release resources.
// It runs before the effect re-runs and when the effect is disposed.
type Cleanup func()
