package quiver

import "sync/atomic"

// EngineStats is a snapshot of global engine counters. Counters are
// cumulative since process start (or the last ResetStats) except
// ActiveEffects, which is a live gauge.
type EngineStats struct {
	SignalsCreated uint64
	MemosCreated   uint64
	EffectsCreated uint64
	ActiveEffects  int64
	Flushes        uint64
	FlushRounds    uint64
}

var (
	statSignalsCreated atomic.Uint64
	statMemosCreated   atomic.Uint64
	statEffectsCreated atomic.Uint64
	statActiveEffects  atomic.Int64
	statFlushes        atomic.Uint64
	statFlushRounds    atomic.Uint64
)

func noteSignalCreated() { statSignalsCreated.Add(1) }

func noteMemoCreated() { statMemosCreated.Add(1) }

func noteEffectCreated() {
	statEffectsCreated.Add(1)
	statActiveEffects.Add(1)
}

func noteEffectDisposed() { statActiveEffects.Add(-1) }

func noteFlush(rounds int) {
	statFlushes.Add(1)
	statFlushRounds.Add(uint64(rounds))
}

// Stats returns a snapshot of the engine counters. The fields are read
// individually, so a snapshot taken during concurrent activity may mix
// values from adjacent instants.
func Stats() EngineStats {
	return EngineStats{
		SignalsCreated: statSignalsCreated.Load(),
		MemosCreated:   statMemosCreated.Load(),
		EffectsCreated: statEffectsCreated.Load(),
		ActiveEffects:  statActiveEffects.Load(),
		Flushes:        statFlushes.Load(),
		FlushRounds:    statFlushRounds.Load(),
	}
}

// ResetStats zeroes all cumulative counters. The ActiveEffects gauge is
// left alone so live effects stay accounted for. Intended for tests and
// benchmarks.
func ResetStats() {
	statSignalsCreated.Store(0)
	statMemosCreated.Store(0)
	statEffectsCreated.Store(0)
	statFlushes.Store(0)
	statFlushRounds.Store(0)
}
