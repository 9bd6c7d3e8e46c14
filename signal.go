package quiver

import (
	"log"
	"sync"
)

// Signal is a reactive value container.
// Reading a Signal's value while a tracker is active (a memo computation
// or an effect run) automatically subscribes that tracker to receive
// notifications when the value changes.
type Signal[T any] struct {
	base cellBase
	pub  pubHub[T]

	// value is the current signal value.
	value T

	// mu protects the value.
	mu sync.RWMutex

	// equal is the equality function used to decide whether a write
	// changed the value. If nil, uses defaultEquals.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	noteSignalCreated()
	return &Signal[T]{
		base: cellBase{
			id: nextID(),
		},
		value: initial,
	}
}

// WithEquals returns the signal configured with a custom equality function.
// Useful for types where reflect.DeepEqual is too expensive or has the
// wrong semantics. Chainable at construction:
//
//	s := quiver.NewSignal(cfg).WithEquals(func(a, b Config) bool { return a.Rev == b.Rev })
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// WithName labels the signal for instrumentation and debug logging.
// Chainable at construction.
func (s *Signal[T]) WithName(name string) *Signal[T] {
	s.base.name = name
	return s
}

// Get returns the current value and subscribes the active tracker, if any.
// The tracker will be notified when this signal's value changes.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	// Track dependency after releasing the value lock to keep re-entrant
	// reads from cleanup thunks deadlock-free.
	s.base.track()

	return value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the signal's value and notifies subscribers if it changed.
// Equal writes are a complete no-op: no notification, no re-evaluation of
// dependents. A changed write opens an implicit single-write batch when no
// explicit batch is active, so re-entrant writes triggered by subscriber
// notification fold into the same flush round.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	old := s.value
	if s.equals(old, value) {
		s.mu.Unlock()
		return
	}
	s.value = value
	s.mu.Unlock()

	checkTrackedWrite()
	emitSignalWrite(s.base.id, s.base.name)
	s.publish(old)
}

// Update atomically reads and updates the signal's value.
// The function receives the current value and returns the new value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	old := s.value
	value := fn(old)
	if s.equals(old, value) {
		s.mu.Unlock()
		return
	}
	s.value = value
	s.mu.Unlock()

	checkTrackedWrite()
	emitSignalWrite(s.base.id, s.base.name)
	s.publish(old)
}

// Subscribe registers a callback invoked with (new, old) after the value
// changes. Inside a batch the callback fires at most once per flush, with
// old being the value from before the batch started; it does not fire at
// all when the batch ends back at the pre-batch value. Returns an
// idempotent unsubscribe.
func (s *Signal[T]) Subscribe(fn func(newValue, oldValue T)) (unsubscribe func()) {
	return s.pub.subscribe(fn)
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

// Name returns the label set with WithName, or "".
func (s *Signal[T]) Name() string {
	return s.base.name
}

// publish queues this write's notifications: the public-subscriber flush
// for this cell, then every subscribed tracker, in registration order.
// The Batch wrapper makes the depth-0 case an implicit transaction that
// drains before Set returns.
func (s *Signal[T]) publish(old T) {
	Batch(func() {
		s.pub.capture(old)
		enqueuePending(s.base.id, s.flushPublic)
		s.base.enqueueNotifies()
	})
}

// flushPublic runs at flush time: compare the value now against the
// pre-batch value and notify public subscribers only on a net change.
func (s *Signal[T]) flushPublic() {
	old, ok := s.pub.consume()
	if !ok {
		return
	}

	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	if s.equals(value, old) {
		return
	}
	if Debug.LogSubscriberCalls {
		log.Printf("[quiver] notify subscribers of %s", debugLabel(s.base.id, s.base.name))
	}
	notifyPublic(&s.pub, s.base.id, s.base.name, value, old)
}

// equals checks value equality using the configured function.
func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}
