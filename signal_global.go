package quiver

// GlobalSignal marks a signal as process-wide shared state. It embeds
// *Signal[T], so all Signal methods are directly available; the wrapper
// type exists to make the sharing intent visible at the declaration.
//
// Reads and writes are safe from any goroutine, but trackers on
// different goroutines each see their own dependency registration.
//
// Example:
//
//	var ServerStatus = quiver.NewGlobalSignal("online")
//	var ActiveJobs = quiver.NewGlobalSignal(0)
type GlobalSignal[T any] struct {
	*Signal[T]
}

// NewGlobalSignal creates a signal intended for process-wide state. The
// signal is initialized immediately and lives for the lifetime of the
// application.
func NewGlobalSignal[T any](initial T) *GlobalSignal[T] {
	return &GlobalSignal[T]{
		Signal: NewSignal(initial),
	}
}

// GlobalMemo marks a memo as process-wide derived state. It embeds
// *Memo[T]; see GlobalSignal for the sharing caveats.
type GlobalMemo[T any] struct {
	*Memo[T]
}

// NewGlobalMemo creates a memo intended for process-wide derived state.
func NewGlobalMemo[T any](compute func() T) *GlobalMemo[T] {
	return &GlobalMemo[T]{
		Memo: NewMemo(compute),
	}
}
