package quivertest

import (
	"sync"
	"testing"

	"github.com/quiver-dev/quiver"
)

// RecordTracker implements quiver.Tracker and records the notifications
// it receives. It subscribes to cells like a memo or effect would, but
// reacts to nothing, so tests can observe subscription traffic directly.
type RecordTracker struct {
	id    uint64
	label string
	log   *OrderLog

	mu       sync.Mutex
	notifies int
	cleanups []func()
}

// NewRecordTracker creates a tracker with a fresh engine ID.
func NewRecordTracker() *RecordTracker {
	return &RecordTracker{id: quiver.NextID()}
}

// Notify records one notification.
func (r *RecordTracker) Notify() {
	r.mu.Lock()
	r.notifies++
	r.mu.Unlock()
	if r.log != nil {
		r.log.append(r.label)
	}
}

// ID returns the tracker's unique identifier.
func (r *RecordTracker) ID() uint64 { return r.id }

// AddCleanup stores a release thunk handed over by a cell at
// subscription time.
func (r *RecordTracker) AddCleanup(fn func()) {
	r.mu.Lock()
	r.cleanups = append(r.cleanups, fn)
	r.mu.Unlock()
}

// Notifies returns how many times the tracker has been notified.
func (r *RecordTracker) Notifies() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notifies
}

// Track runs fn with the tracker active. Cell reads inside fn subscribe
// the tracker.
func (r *RecordTracker) Track(fn func()) {
	quiver.WithTracker(r, fn)
}

// Release runs the stored cleanups, unsubscribing the tracker from every
// cell it registered with.
func (r *RecordTracker) Release() {
	r.mu.Lock()
	fns := r.cleanups
	r.cleanups = nil
	r.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// OrderLog records the order in which a group of labeled trackers is
// notified. All trackers handed out by one log append to the same list.
type OrderLog struct {
	mu     sync.Mutex
	labels []string
}

// NewOrderLog creates an empty order log.
func NewOrderLog() *OrderLog {
	return &OrderLog{}
}

// Tracker returns a new RecordTracker whose notifications append label
// to the log.
func (l *OrderLog) Tracker(label string) *RecordTracker {
	return &RecordTracker{id: quiver.NextID(), label: label, log: l}
}

func (l *OrderLog) append(label string) {
	l.mu.Lock()
	l.labels = append(l.labels, label)
	l.mu.Unlock()
}

// Order returns a copy of the recorded labels in notification order.
func (l *OrderLog) Order() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.labels))
	copy(out, l.labels)
	return out
}

// Reset clears the log.
func (l *OrderLog) Reset() {
	l.mu.Lock()
	l.labels = nil
	l.mu.Unlock()
}

// CountSubscriber captures Subscribe callback traffic on a signal or
// memo: the number of calls and the most recent new/old pair.
type CountSubscriber[T any] struct {
	mu    sync.Mutex
	calls int
	last  T
	prev  T
}

// NewCountSubscriber creates an empty subscriber.
func NewCountSubscriber[T any]() *CountSubscriber[T] {
	return &CountSubscriber[T]{}
}

// Callback returns the function to pass to Subscribe.
func (c *CountSubscriber[T]) Callback() func(newValue, oldValue T) {
	return func(newValue, oldValue T) {
		c.mu.Lock()
		c.calls++
		c.last = newValue
		c.prev = oldValue
		c.mu.Unlock()
	}
}

// Calls returns how many times the callback has fired.
func (c *CountSubscriber[T]) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Last returns the most recent newValue and oldValue seen by the
// callback. Zero values if it never fired.
func (c *CountSubscriber[T]) Last() (newValue, oldValue T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.prev
}

// Recorder observes a readable through an effect and logs every value it
// sees, starting with the current one.
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
	effect *quiver.Effect
}

// Record creates a recorder over source. The underlying effect runs
// immediately, so the log starts with the current value.
func Record[T any](source quiver.Readable[T]) *Recorder[T] {
	r := &Recorder[T]{}
	r.effect = quiver.NewEffect(func() quiver.Cleanup {
		v := source.Get()
		r.mu.Lock()
		r.values = append(r.values, v)
		r.mu.Unlock()
		return nil
	})
	return r
}

// Values returns a copy of the recorded values in observation order.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Last returns the most recently recorded value, or the zero value if
// nothing has been recorded.
func (r *Recorder[T]) Last() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		var zero T
		return zero
	}
	return r.values[len(r.values)-1]
}

// Len returns the number of recorded values.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Reset clears the log without disposing the effect.
func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	r.values = nil
	r.mu.Unlock()
}

// Stop disposes the underlying effect. The recorder stops observing and
// the log stays readable.
func (r *Recorder[T]) Stop() {
	r.effect.Dispose()
}

// ExpectValues asserts that the recorder saw exactly want, in order.
func ExpectValues[T comparable](t *testing.T, r *Recorder[T], want ...T) {
	t.Helper()
	got := r.Values()
	if len(got) != len(want) {
		t.Errorf("expected %d recorded values %v, got %d: %v", len(want), want, len(got), got)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("recorded value %d: expected %v, got %v (full log: %v)", i, want[i], got[i], got)
			return
		}
	}
}

// ExpectLast asserts the recorder's most recent value.
func ExpectLast[T comparable](t *testing.T, r *Recorder[T], want T) {
	t.Helper()
	if got := r.Last(); got != want {
		t.Errorf("expected last recorded value %v, got %v", want, got)
	}
}

// ExpectNotifies asserts the tracker's notification count.
func ExpectNotifies(t *testing.T, r *RecordTracker, want int) {
	t.Helper()
	if got := r.Notifies(); got != want {
		t.Errorf("expected %d notifications, got %d", want, got)
	}
}

// ExpectOrder asserts the log's recorded notification order.
func ExpectOrder(t *testing.T, l *OrderLog, want ...string) {
	t.Helper()
	got := l.Order()
	if len(got) != len(want) {
		t.Errorf("expected notification order %v, got %v", want, got)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected notification order %v, got %v", want, got)
			return
		}
	}
}
