package quiver

import "sync"

// cellBase provides type-erased subscriber management.
// It is embedded in Signal[T] and Memo[T] to share registration logic.
type cellBase struct {
	id   uint64
	name string

	// subs are the trackers subscribed to this cell, in registration
	// order. Notification order follows registration order and is
	// externally observable, so removal splices instead of swapping.
	subs []Tracker

	// registered records which tracker IDs are currently subscribed.
	// A live tracker appears at most once in subs; the entry is cleared
	// by the removal thunk handed to the tracker at registration time.
	registered map[uint64]struct{}

	// mu protects subs and registered.
	mu sync.RWMutex
}

// track registers the active tracker as a subscriber of this cell.
// Called on every read. No-op when nothing is tracking, when registration
// is suspended (Untracked), or when the tracker is already registered.
// The removal thunk pushed onto the tracker's cleanups unregisters it, so
// dependency sets always match the tracker's most recent run.
func (c *cellBase) track() {
	t := activeTracker()
	if t == nil {
		return
	}

	id := t.ID()

	c.mu.Lock()
	if _, ok := c.registered[id]; ok {
		c.mu.Unlock()
		return
	}
	if c.registered == nil {
		c.registered = make(map[uint64]struct{})
	}
	c.registered[id] = struct{}{}
	c.subs = append(c.subs, t)
	c.mu.Unlock()

	t.AddCleanup(func() { c.remove(id) })
}

// remove drops the tracker with the given ID from this cell.
// Clears both the subscriber entry and the membership record.
func (c *cellBase) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.registered, id)
	for i, t := range c.subs {
		if t.ID() == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// hasSubscribers reports whether any tracker is subscribed.
func (c *cellBase) hasSubscribers() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs) > 0
}

// enqueueNotifies queues a Notify entry for every current subscriber, in
// registration order. Runs under an open batch; per-round deduplication
// collapses repeats from multiple writes.
func (c *cellBase) enqueueNotifies() {
	c.mu.RLock()
	subs := make([]Tracker, len(c.subs))
	copy(subs, c.subs)
	c.mu.RUnlock()

	for _, t := range subs {
		enqueuePending(t.ID(), t.Notify)
	}
}

// getID returns the unique identifier for this cell.
func (c *cellBase) getID() uint64 {
	return c.id
}

// publicSub is one public subscriber registration.
type publicSub[T any] struct {
	fn func(newValue, oldValue T)
}

// pubHub manages a cell's public subscribers and the once-per-batch
// capture of the pre-batch value they are compared against.
// Embedded in Signal[T] and Memo[T].
type pubHub[T any] struct {
	mu   sync.Mutex
	subs []*publicSub[T]

	// pendingOld is the cell's value as of before the current batch
	// started, captured on the first change inside the batch and consumed
	// by the flush thunk. Public subscribers fire only when the value at
	// flush time differs from pendingOld.
	pendingOld  T
	oldCaptured bool
}

// subscribe appends fn and returns an idempotent unsubscribe.
func (h *pubHub[T]) subscribe(fn func(newValue, oldValue T)) func() {
	sub := &publicSub[T]{fn: fn}

	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, s := range h.subs {
			if s == sub {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

// capture records old as the pre-batch value unless one is already
// captured for the batch in flight.
func (h *pubHub[T]) capture(old T) {
	h.mu.Lock()
	if !h.oldCaptured {
		h.pendingOld = old
		h.oldCaptured = true
	}
	h.mu.Unlock()
}

// consume returns the captured pre-batch value and resets the capture.
// ok is false when no change was recorded since the last flush.
func (h *pubHub[T]) consume() (old T, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.oldCaptured {
		return old, false
	}
	h.oldCaptured = false
	return h.pendingOld, true
}

// snapshot copies the subscriber list for iteration outside the lock.
func (h *pubHub[T]) snapshot() []*publicSub[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := make([]*publicSub[T], len(h.subs))
	copy(subs, h.subs)
	return subs
}

// notifyPublic calls every public subscriber with (new, old).
// Callbacks run with dependency registration suspended so that a callback
// reading cells does not subscribe whatever tracker's notification
// triggered this flush.
func notifyPublic[T any](h *pubHub[T], id uint64, name string, newValue, oldValue T) {
	subs := h.snapshot()
	if len(subs) == 0 {
		return
	}

	old := setActiveTracker(nil)
	defer setActiveTracker(old)

	for _, sub := range subs {
		emitSubscriberNotify(id, name)
		sub.fn(newValue, oldValue)
	}
}
