package quiver

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Effect is a reactive side effect. It runs once at creation and re-runs
// whenever any signal or memo it read during its last run changes.
//
// Effects own effects: one created synchronously during another's run
// becomes a child of the running effect and is disposed (a) before every
// re-run of the parent, since the re-run would recreate it, and (b) when
// the parent is disposed. Root effects belong to whoever holds the handle,
// or to the ambient Scope when created inside Scope.Run.
type Effect struct {
	id   uint64
	name string

	// fn is the effect body. A non-nil returned Cleanup is run before the
	// next re-run and at disposal.
	fn func() Cleanup

	// cleanups hold dependency releases pushed by cells read during the
	// last run, OnCleanup registrations, and the body's returned Cleanup.
	// Run in reverse order and cleared before each re-run and at disposal.
	cleanups []func()

	// children are effects created during the last run, in creation order.
	children []*Effect

	// mu protects cleanups and children.
	mu sync.Mutex

	// disposed is the terminal state. Once set, the effect never runs again.
	disposed atomic.Bool

	// allowWrites suppresses strict-mode complaints about signal writes
	// inside the body.
	allowWrites bool
}

// EffectOption configures an Effect at creation.
type EffectOption interface {
	applyEffect(e *Effect)
}

type effectOptionFunc func(*Effect)

func (f effectOptionFunc) applyEffect(e *Effect) { f(e) }

// AllowWrites marks an effect as intentionally writing signals from its
// body, exempting it from the StrictEffectWrites check. An effect that
// unconditionally rewrites one of its own dependencies will re-run forever;
// convergence is the caller's responsibility.
func AllowWrites() EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.allowWrites = true
	})
}

// EffectName labels the effect for instrumentation and debug logging.
func EffectName(name string) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.name = name
	})
}

// NewEffect creates an effect and runs it immediately. The body re-runs
// whenever a dependency changes, until Dispose. If fn returns a non-nil
// Cleanup it runs before each re-run and at disposal.
//
//	e := quiver.NewEffect(func() quiver.Cleanup {
//	    id := connect(addr.Get())
//	    return func() { disconnect(id) }
//	})
//	defer e.Dispose()
func NewEffect(fn func() Cleanup, opts ...EffectOption) *Effect {
	e := &Effect{
		id: nextID(),
		fn: fn,
	}
	for _, opt := range opts {
		opt.applyEffect(e)
	}
	noteEffectCreated()

	e.run()

	// Adopt into the enclosing effect when one is running, else into the
	// ambient scope. Adoption happens after the first run so a body that
	// panics leaves no half-registered child behind.
	ctx := getTrackingContext()
	if parent := ctx.effect; parent != nil {
		parent.adopt(e)
	} else if ctx.scope != nil {
		ctx.scope.adopt(e)
	}

	return e
}

// Notify re-runs the effect body. No-op once disposed.
// Implements the Tracker interface.
func (e *Effect) Notify() {
	if e.disposed.Load() {
		return
	}
	e.run()
}

// ID returns the unique identifier for this effect.
// Implements the Tracker interface.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the label set with EffectName, or "".
func (e *Effect) Name() string {
	return e.name
}

// AddCleanup registers a thunk to run before the effect's next run and at
// disposal. Cells use this for dependency releases; bodies can use it via
// OnCleanup. Implements the Tracker interface.
func (e *Effect) AddCleanup(fn func()) {
	e.mu.Lock()
	e.cleanups = append(e.cleanups, fn)
	e.mu.Unlock()
}

// IsActive reports whether the effect will still re-run on changes.
func (e *Effect) IsActive() bool {
	return !e.disposed.Load()
}

// Dispose deactivates the effect: recursively disposes owned children,
// then runs its cleanups, releasing every dependency registration.
// Idempotent. Disposing never affects the parent or siblings.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}
	noteEffectDisposed()

	e.disposeChildren()
	e.runCleanups()
}

// run executes the body: children from the previous run are disposed and
// prior registrations released, then the body runs with this effect as
// both the active tracker and the owning effect.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	e.disposeChildren()
	e.runCleanups()

	timed := instrumentsOn.Load()
	var started time.Time
	if timed {
		started = time.Now()
	}

	ctx := getTrackingContext()
	prevTracker := ctx.tracker
	prevEffect := ctx.effect
	ctx.tracker = e
	ctx.effect = e

	var cleanup Cleanup
	func() {
		defer func() {
			ctx.tracker = prevTracker
			ctx.effect = prevEffect
		}()
		cleanup = e.fn()
	}()

	if cleanup != nil {
		e.AddCleanup(cleanup)
	}

	if timed {
		emitEffectRun(e.id, e.name, time.Since(started))
	}
	if Debug.LogEffectRuns {
		log.Printf("[quiver] effect %s ran", debugLabel(e.id, e.name))
	}
}

// adopt registers child as owned by this effect. A child adopted after the
// owner was disposed is disposed immediately.
func (e *Effect) adopt(child *Effect) {
	if e.disposed.Load() {
		child.Dispose()
		return
	}
	e.mu.Lock()
	e.children = append(e.children, child)
	e.mu.Unlock()
}

// disposeChildren disposes owned children in reverse creation order and
// clears the list.
func (e *Effect) disposeChildren() {
	e.mu.Lock()
	children := e.children
	e.children = nil
	e.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
}

// runCleanups runs and clears registered cleanups in reverse registration
// order, so the body's returned Cleanup runs before dependency releases.
func (e *Effect) runCleanups() {
	e.mu.Lock()
	cleanups := e.cleanups
	e.cleanups = nil
	e.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

var _ Tracker = (*Effect)(nil)
