package quiver

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Memo is a cached computation that automatically tracks its dependencies.
// When a dependency changes the memo goes dirty; it recomputes lazily on
// the next read when nothing subscribes to it, and eagerly, inside the
// same flush round, when a tracker depends on it. The eager path is what
// keeps diamond-shaped graphs glitch-free: downstream effects re-run only
// after every memo between them and the written signal is fresh.
//
// A memo is itself a readable, subscribable cell. It is never disposed;
// when nothing reads it anymore it simply stays dirty and inert. Its
// dependency registrations are released and rebuilt by each evaluation.
type Memo[T any] struct {
	base cellBase
	pub  pubHub[T]

	// compute is the function that computes the memo's value.
	compute func() T

	// value is the cached computed value.
	value T

	// valueMu protects value access.
	valueMu sync.RWMutex

	// dirty marks the cached value possibly stale.
	// A new memo starts dirty; the first read computes.
	dirty atomic.Bool

	// cleanups release the dependency registrations made during the
	// memo's own last evaluation. Run and cleared by the next evaluation.
	cleanups   []func()
	cleanupsMu sync.Mutex

	// equal is the equality function for change detection.
	equal func(T, T) bool

	// computing guards against re-entrant evaluation. A memo that reads
	// itself through a cycle gets its stale value back instead of
	// recursing forever.
	computing atomic.Bool
}

// NewMemo creates a new memo with the given computation function.
// The computation is not run immediately; it runs on first read.
func NewMemo[T any](compute func() T) *Memo[T] {
	noteMemoCreated()
	m := &Memo[T]{
		base: cellBase{
			id: nextID(),
		},
		compute: compute,
	}
	m.dirty.Store(true)
	return m
}

// WithEquals configures the memo with a custom equality function.
// Chainable at construction.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

// WithName labels the memo for instrumentation and debug logging.
// Chainable at construction.
func (m *Memo[T]) WithName(name string) *Memo[T] {
	m.base.name = name
	return m
}

// Get returns the memo's value, recomputing first if it is dirty, then
// subscribes the active tracker. A read never observes a stale value.
func (m *Memo[T]) Get() T {
	if m.dirty.Load() {
		m.recompute()
	}

	m.base.track()

	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// Peek returns the memo's value without subscribing.
// Still recomputes if the cached value is stale.
func (m *Memo[T]) Peek() T {
	if m.dirty.Load() {
		m.recompute()
	}

	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// Subscribe registers a callback invoked with (new, old) after the memo's
// value changes. Same flush semantics as Signal.Subscribe: at most one call
// per flush, compared against the pre-batch value. Returns an idempotent
// unsubscribe.
func (m *Memo[T]) Subscribe(fn func(newValue, oldValue T)) (unsubscribe func()) {
	return m.pub.subscribe(fn)
}

// Notify marks the memo stale. When the memo is observed by at least one
// tracker it re-evaluates immediately so the change propagates within the
// current flush round; unobserved memos wait for the next read.
// Implements the Tracker interface.
func (m *Memo[T]) Notify() {
	m.dirty.Store(true)
	if m.base.hasSubscribers() {
		m.recompute()
	}
}

// ID returns the unique identifier for this memo.
// Implements the Tracker interface.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

// Name returns the label set with WithName, or "".
func (m *Memo[T]) Name() string {
	return m.base.name
}

// AddCleanup registers a dependency-release thunk from a cell this memo
// read during evaluation. Implements the Tracker interface.
func (m *Memo[T]) AddCleanup(fn func()) {
	m.cleanupsMu.Lock()
	m.cleanups = append(m.cleanups, fn)
	m.cleanupsMu.Unlock()
}

// isMemo marks the type for write-purity checks during evaluation.
func (m *Memo[T]) isMemo() {}

// recompute evaluates the memo: release the previous evaluation's
// registrations, clear dirty, run compute with this memo as the active
// tracker, and publish the change if the result differs.
func (m *Memo[T]) recompute() {
	if m.computing.Swap(true) {
		// Re-entrant evaluation through a cycle; caller sees the stale value.
		return
	}
	defer m.computing.Store(false)

	m.runCleanups()
	m.dirty.Store(false)

	timed := instrumentsOn.Load()
	var started time.Time
	if timed {
		started = time.Now()
	}

	ctx := getTrackingContext()
	prev := ctx.tracker
	ctx.tracker = m
	var newValue T
	func() {
		defer func() { ctx.tracker = prev }()
		newValue = m.compute()
	}()

	m.valueMu.Lock()
	old := m.value
	changed := !m.equals(old, newValue)
	m.value = newValue
	m.valueMu.Unlock()

	if timed {
		emitMemoRecompute(m.base.id, m.base.name, time.Since(started))
	}
	if Debug.LogRecomputes {
		log.Printf("[quiver] memo %s recomputed (changed=%v)", debugLabel(m.base.id, m.base.name), changed)
	}

	if changed {
		m.publish(old)
	}
}

// publish queues downstream notification of a value change, with the same
// discipline as a signal write: public flush entry first, then subscribed
// trackers in registration order, all inside a batch.
func (m *Memo[T]) publish(old T) {
	Batch(func() {
		m.pub.capture(old)
		enqueuePending(m.base.id, m.flushPublic)
		m.base.enqueueNotifies()
	})
}

// flushPublic compares the value now against the pre-batch value and
// notifies public subscribers only on a net change.
func (m *Memo[T]) flushPublic() {
	old, ok := m.pub.consume()
	if !ok {
		return
	}

	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()

	if m.equals(value, old) {
		return
	}
	if Debug.LogSubscriberCalls {
		log.Printf("[quiver] notify subscribers of %s", debugLabel(m.base.id, m.base.name))
	}
	notifyPublic(&m.pub, m.base.id, m.base.name, value, old)
}

// runCleanups releases the dependency registrations from the previous
// evaluation.
func (m *Memo[T]) runCleanups() {
	m.cleanupsMu.Lock()
	cleanups := m.cleanups
	m.cleanups = nil
	m.cleanupsMu.Unlock()

	for _, fn := range cleanups {
		fn()
	}
}

// equals checks value equality using the configured function.
func (m *Memo[T]) equals(a, b T) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return defaultEquals(a, b)
}

// memoMarker identifies memos behind the Tracker interface without
// knowing their type parameter.
type memoMarker interface {
	isMemo()
}

var _ Tracker = (*Memo[int])(nil)
var _ memoMarker = (*Memo[int])(nil)
