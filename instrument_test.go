package quiver

import (
	"sync"
	"testing"
	"time"
)

// recordingInstrument counts engine events for tests.
type recordingInstrument struct {
	mu          sync.Mutex
	writes      int
	recomputes  int
	effectRuns  int
	notifies    int
	flushStarts int
	flushEnds   int
	lastRounds  int
}

func (r *recordingInstrument) SignalWrite(id uint64, name string) {
	r.mu.Lock()
	r.writes++
	r.mu.Unlock()
}

func (r *recordingInstrument) MemoRecompute(id uint64, name string, d time.Duration) {
	r.mu.Lock()
	r.recomputes++
	r.mu.Unlock()
}

func (r *recordingInstrument) EffectRun(id uint64, name string, d time.Duration) {
	r.mu.Lock()
	r.effectRuns++
	r.mu.Unlock()
}

func (r *recordingInstrument) SubscriberNotify(id uint64, name string) {
	r.mu.Lock()
	r.notifies++
	r.mu.Unlock()
}

func (r *recordingInstrument) FlushStart(depth int) {
	r.mu.Lock()
	r.flushStarts++
	r.mu.Unlock()
}

func (r *recordingInstrument) FlushEnd(rounds, entries int, d time.Duration) {
	r.mu.Lock()
	r.flushEnds++
	r.lastRounds = rounds
	r.mu.Unlock()
}

func (r *recordingInstrument) snapshot() (writes, recomputes, effectRuns, notifies int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes, r.recomputes, r.effectRuns, r.notifies
}

func TestInstrumentReceivesEvents(t *testing.T) {
	rec := &recordingInstrument{}
	remove := RegisterInstrument(rec)
	defer remove()

	s := NewSignal(0)
	m := NewMemo(func() int { return s.Get() * 2 })
	e := NewEffect(func() Cleanup {
		_ = m.Get()
		return nil
	})
	defer e.Dispose()

	s.Subscribe(func(newValue, oldValue int) {})

	s.Set(5)

	writes, recomputes, effectRuns, notifies := rec.snapshot()
	if writes != 1 {
		t.Errorf("expected 1 signal write, got %d", writes)
	}
	if recomputes < 2 {
		t.Errorf("expected at least 2 recomputes (initial + change), got %d", recomputes)
	}
	if effectRuns < 2 {
		t.Errorf("expected at least 2 effect runs, got %d", effectRuns)
	}
	if notifies != 1 {
		t.Errorf("expected 1 subscriber notify, got %d", notifies)
	}

	rec.mu.Lock()
	starts, ends := rec.flushStarts, rec.flushEnds
	rec.mu.Unlock()
	if starts == 0 || starts != ends {
		t.Errorf("expected paired flush events, got %d starts %d ends", starts, ends)
	}
}

func TestInstrumentRemove(t *testing.T) {
	rec := &recordingInstrument{}
	remove := RegisterInstrument(rec)

	s := NewSignal(0)
	s.Set(1)

	writes, _, _, _ := rec.snapshot()
	if writes != 1 {
		t.Fatalf("expected 1 write before removal, got %d", writes)
	}

	remove()
	s.Set(2)

	writes, _, _, _ = rec.snapshot()
	if writes != 1 {
		t.Errorf("removed instrument should not receive events, got %d writes", writes)
	}

	// Removing twice is harmless
	remove()
}

func TestInstrumentMultiple(t *testing.T) {
	rec1 := &recordingInstrument{}
	rec2 := &recordingInstrument{}
	remove1 := RegisterInstrument(rec1)
	defer remove1()
	remove2 := RegisterInstrument(rec2)
	defer remove2()

	s := NewSignal(0)
	s.Set(1)

	w1, _, _, _ := rec1.snapshot()
	w2, _, _, _ := rec2.snapshot()
	if w1 != 1 || w2 != 1 {
		t.Errorf("both instruments should see the write, got %d and %d", w1, w2)
	}
}

func TestInstrumentNoneRegisteredFastPath(t *testing.T) {
	if instrumentsOn.Load() {
		t.Skip("another instrument is registered")
	}

	// Emitting with no instruments must be a no-op
	emitSignalWrite(1, "x")
	emitFlushStart(1)
	emitFlushEnd(1, 1, time.Millisecond)
}
