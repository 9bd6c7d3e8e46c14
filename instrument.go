package quiver

import (
	"sync"
	"sync/atomic"
	"time"
)

// Instrument receives engine events. Implementations export them to
// metrics, tracing, or debugging backends.
//
// Callbacks run synchronously on the goroutine performing the operation,
// inside the write or flush path. Implementations must be fast and must
// not read or write cells.
type Instrument interface {
	// SignalWrite fires after a signal accepts a changed value.
	SignalWrite(id uint64, name string)

	// MemoRecompute fires after a memo recomputes, whether or not the
	// result changed.
	MemoRecompute(id uint64, name string, d time.Duration)

	// EffectRun fires after an effect body completes.
	EffectRun(id uint64, name string, d time.Duration)

	// SubscriberNotify fires per public subscriber callback.
	SubscriberNotify(id uint64, name string)

	// FlushStart fires when an outermost batch begins draining.
	FlushStart(depth int)

	// FlushEnd fires when the drain completes.
	FlushEnd(rounds, entries int, d time.Duration)
}

var (
	instrumentsMu sync.RWMutex
	instruments   []Instrument

	// instrumentsOn mirrors len(instruments) > 0 so hot paths can skip
	// the lock when nothing is registered.
	instrumentsOn atomic.Bool
)

// RegisterInstrument adds an instrument to the engine. It returns a
// remove function; calling it more than once is a no-op.
func RegisterInstrument(ins Instrument) (remove func()) {
	instrumentsMu.Lock()
	instruments = append(instruments, ins)
	instrumentsOn.Store(true)
	instrumentsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			instrumentsMu.Lock()
			for i, cur := range instruments {
				if cur == ins {
					instruments = append(instruments[:i], instruments[i+1:]...)
					break
				}
			}
			instrumentsOn.Store(len(instruments) > 0)
			instrumentsMu.Unlock()
		})
	}
}

func emitSignalWrite(id uint64, name string) {
	if !instrumentsOn.Load() {
		return
	}
	instrumentsMu.RLock()
	defer instrumentsMu.RUnlock()
	for _, ins := range instruments {
		ins.SignalWrite(id, name)
	}
}

func emitMemoRecompute(id uint64, name string, d time.Duration) {
	if !instrumentsOn.Load() {
		return
	}
	instrumentsMu.RLock()
	defer instrumentsMu.RUnlock()
	for _, ins := range instruments {
		ins.MemoRecompute(id, name, d)
	}
}

func emitEffectRun(id uint64, name string, d time.Duration) {
	if !instrumentsOn.Load() {
		return
	}
	instrumentsMu.RLock()
	defer instrumentsMu.RUnlock()
	for _, ins := range instruments {
		ins.EffectRun(id, name, d)
	}
}

func emitSubscriberNotify(id uint64, name string) {
	if !instrumentsOn.Load() {
		return
	}
	instrumentsMu.RLock()
	defer instrumentsMu.RUnlock()
	for _, ins := range instruments {
		ins.SubscriberNotify(id, name)
	}
}

func emitFlushStart(depth int) {
	if !instrumentsOn.Load() {
		return
	}
	instrumentsMu.RLock()
	defer instrumentsMu.RUnlock()
	for _, ins := range instruments {
		ins.FlushStart(depth)
	}
}

func emitFlushEnd(rounds, entries int, d time.Duration) {
	if !instrumentsOn.Load() {
		return
	}
	instrumentsMu.RLock()
	defer instrumentsMu.RUnlock()
	for _, ins := range instruments {
		ins.FlushEnd(rounds, entries, d)
	}
}
