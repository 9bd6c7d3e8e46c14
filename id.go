package quiver

import "sync/atomic"

// globalIDCounter is the source of unique IDs for all reactive primitives.
// Cells and trackers share one counter so an ID identifies a node of either
// kind in membership records and flush-queue deduplication.
var globalIDCounter uint64

// nextID returns the next unique ID for a reactive primitive.
// IDs are monotonically increasing and never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// NextID allocates an ID from the shared counter. Tracker implementations
// outside this package must use it so their IDs never collide with
// engine-allocated ones in membership records and flush deduplication.
func NextID() uint64 {
	return nextID()
}
