package quiver

import (
	"log"
	"sync"
	"time"
)

// BudgetMode determines behavior when a flush budget is exceeded.
type BudgetMode int

const (
	// BudgetThrottle drops the remaining queue and ends the flush (default).
	BudgetThrottle BudgetMode = iota

	// BudgetPanic panics with code E004. Use in tests or strict
	// development environments to catch runaway cascades early.
	BudgetPanic
)

// FlushBudget bounds the work a single flush may perform. Unbudgeted, a
// flush runs rounds until the queue is empty, which diverges when an
// effect keeps rewriting its own dependency. A budget turns that
// divergence into a throttle or a panic.
//
// Install one at application startup:
//
//	quiver.SetFlushBudget(&quiver.FlushBudget{MaxRounds: 100})
type FlushBudget struct {
	// MaxRounds caps the rounds per flush. Zero means unlimited.
	MaxRounds int

	// MaxEntries caps the total notifications delivered per flush.
	// Zero means unlimited.
	MaxEntries int

	// Mode selects what happens at the cap.
	Mode BudgetMode

	mu                sync.Mutex
	flushes           uint64
	notifications     uint64
	trips             uint64
	maxObservedRounds int
}

// flushBudget applies to every flush on every goroutine. Set it before
// the graph is active, like the other package configuration vars.
var flushBudget *FlushBudget

// SetFlushBudget installs a budget for all subsequent flushes. Pass nil
// to restore unbounded draining.
func SetFlushBudget(b *FlushBudget) {
	flushBudget = b
}

// admitRound reports whether another round may start given the rounds
// and notification entries already spent in this flush. In throttle mode
// an exceeded budget records a trip and returns false; in panic mode it
// panics with code E004.
func (b *FlushBudget) admitRound(rounds, entries int) bool {
	if b == nil {
		return true
	}

	exceeded := (b.MaxRounds > 0 && rounds >= b.MaxRounds) ||
		(b.MaxEntries > 0 && entries >= b.MaxEntries)
	if !exceeded {
		return true
	}

	if b.Mode == BudgetPanic {
		codedPanic(codeBudgetExceeded, "flush exceeded budget after %d rounds and %d notifications", rounds, entries)
	}

	b.mu.Lock()
	b.trips++
	b.mu.Unlock()

	if DebugMode {
		log.Printf("[quiver] flush budget exceeded after %d rounds, %d notifications; dropping queue", rounds, entries)
	}
	return false
}

// noteFlush records a completed flush for Stats.
func (b *FlushBudget) noteFlush(rounds, entries int) {
	if b == nil {
		return
	}

	b.mu.Lock()
	b.flushes++
	b.notifications += uint64(entries)
	if rounds > b.maxObservedRounds {
		b.maxObservedRounds = rounds
	}
	b.mu.Unlock()
}

// BudgetStats reports budget usage.
type BudgetStats struct {
	// Flushes is the number of completed flushes seen by this budget.
	Flushes uint64

	// Notifications is the total notifications delivered across them.
	Notifications uint64

	// Trips is the number of flushes that hit the cap in throttle mode.
	Trips uint64

	// MaxObservedRounds is the largest round count any flush reached.
	MaxObservedRounds int
}

// Stats returns current budget usage statistics.
func (b *FlushBudget) Stats() BudgetStats {
	if b == nil {
		return BudgetStats{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return BudgetStats{
		Flushes:           b.flushes,
		Notifications:     b.notifications,
		Trips:             b.trips,
		MaxObservedRounds: b.maxObservedRounds,
	}
}

// FlushRateTracker counts events inside a sliding time window. Exporters
// use it to cap how often they forward engine activity downstream.
type FlushRateTracker struct {
	events []time.Time
	window time.Duration
	max    int
	mu     sync.Mutex
}

// NewFlushRateTracker returns a tracker allowing max events per window.
// A zero or negative window defaults to one second.
func NewFlushRateTracker(window time.Duration, max int) *FlushRateTracker {
	if window <= 0 {
		window = time.Second
	}
	return &FlushRateTracker{window: window, max: max}
}

// Allow records an event if the window has room and reports whether it
// was admitted. A zero max admits everything.
func (w *FlushRateTracker) Allow() bool {
	if w.max == 0 {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-w.window)

	valid := 0
	for _, ts := range w.events {
		if ts.After(cutoff) {
			w.events[valid] = ts
			valid++
		}
	}
	w.events = w.events[:valid]

	if len(w.events) >= w.max {
		return false
	}

	w.events = append(w.events, now)
	return true
}

// Count returns the number of events currently inside the window.
func (w *FlushRateTracker) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-w.window)

	n := 0
	for _, ts := range w.events {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}
