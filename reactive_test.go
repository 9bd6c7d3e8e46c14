package quiver

import (
	"testing"
)

// Integration tests for the reactive system: Signal, Memo, Effect, and
// Batch working together.

func TestIntegrationSignalMemoChain(t *testing.T) {
	// price -> taxedPrice -> discountedPrice
	price := NewSignal(100.0)
	taxRate := NewSignal(0.08)
	discount := NewSignal(0.1)

	taxedPrice := NewMemo(func() float64 {
		return price.Get() * (1 + taxRate.Get())
	})

	discountedPrice := NewMemo(func() float64 {
		return taxedPrice.Get() * (1 - discount.Get())
	})

	// 100 * 1.08 = 108, then 108 * 0.9 = 97.2
	if got := discountedPrice.Get(); got < 97.19 || got > 97.21 {
		t.Errorf("expected ~97.2, got %f", got)
	}

	price.Set(200.0)
	// 200 * 1.08 = 216, then 216 * 0.9 = 194.4
	if got := discountedPrice.Get(); got < 194.39 || got > 194.41 {
		t.Errorf("expected ~194.4, got %f", got)
	}

	taxRate.Set(0.1)
	// 200 * 1.1 = 220, then 220 * 0.9 = 198
	if got := discountedPrice.Get(); got < 197.99 || got > 198.01 {
		t.Errorf("expected ~198, got %f", got)
	}
}

func TestIntegrationDiamondGlitchFree(t *testing.T) {
	// Diamond pattern:
	//         s
	//        / \
	//   double  triple
	//        \ /
	//      effect
	//
	// The effect must never observe one arm fresh and the other stale.

	s := NewSignal(1)

	double := NewMemo(func() int { return s.Get() * 2 })
	triple := NewMemo(func() int { return s.Get() * 3 })

	var observed [][2]int
	e := NewEffect(func() Cleanup {
		observed = append(observed, [2]int{double.Get(), triple.Get()})
		return nil
	})
	defer e.Dispose()

	if len(observed) != 1 || observed[0] != [2]int{2, 3} {
		t.Fatalf("expected initial observation (2, 3), got %v", observed)
	}

	s.Set(2)

	// Exactly one more run, with both arms fresh
	if len(observed) != 2 {
		t.Fatalf("expected 2 observations, got %d: %v", len(observed), observed)
	}
	if observed[1] != [2]int{4, 6} {
		t.Errorf("expected consistent observation (4, 6), got (%d, %d)", observed[1][0], observed[1][1])
	}
}

func TestIntegrationDiamondRecomputeCounts(t *testing.T) {
	a := NewSignal(1)

	bComputations := 0
	b := NewMemo(func() int {
		bComputations++
		return a.Get() * 2
	})

	cComputations := 0
	c := NewMemo(func() int {
		cComputations++
		return a.Get() * 3
	})

	effectRuns := 0
	var lastSum int
	e := NewEffect(func() Cleanup {
		effectRuns++
		lastSum = b.Get() + c.Get()
		return nil
	})
	defer e.Dispose()

	if lastSum != 5 || effectRuns != 1 {
		t.Fatalf("expected sum 5 after 1 run, got %d after %d", lastSum, effectRuns)
	}

	// One write: each memo recomputes once, the effect runs once
	a.Set(2)

	if lastSum != 10 {
		t.Errorf("expected sum 10, got %d", lastSum)
	}
	if effectRuns != 2 {
		t.Errorf("expected 2 effect runs, got %d", effectRuns)
	}
	if bComputations != 2 || cComputations != 2 {
		t.Errorf("expected each memo computed twice, got b=%d c=%d", bComputations, cComputations)
	}
}

func TestIntegrationBatchedUpdatesWithMemo(t *testing.T) {
	x := NewSignal(0)
	y := NewSignal(0)
	z := NewSignal(0)

	sum := NewMemo(func() int {
		return x.Get() + y.Get() + z.Get()
	})

	effectRuns := 0
	var lastValue int
	e := NewEffect(func() Cleanup {
		effectRuns++
		lastValue = sum.Get()
		return nil
	})
	defer e.Dispose()

	if effectRuns != 1 || lastValue != 0 {
		t.Fatalf("expected 1 run with value 0, got %d runs with value %d", effectRuns, lastValue)
	}

	Batch(func() {
		x.Set(10)
		y.Set(20)
		z.Set(30)
	})

	// The effect runs once more, not three times
	if effectRuns != 2 {
		t.Errorf("expected 2 total effect runs, got %d", effectRuns)
	}
	if lastValue != 60 {
		t.Errorf("expected sum 60, got %d", lastValue)
	}
}

func TestIntegrationMemoRevertInsideBatch(t *testing.T) {
	count := NewSignal(1)
	double := NewMemo(func() int { return count.Get() * 2 })

	effectRuns := 0
	e := NewEffect(func() Cleanup {
		_ = double.Get()
		effectRuns++
		return nil
	})
	defer e.Dispose()

	calls := 0
	double.Subscribe(func(newValue, oldValue int) {
		calls++
	})

	Batch(func() {
		count.Set(5)
		count.Set(1)
	})

	// The memo lands back on its pre-batch value: public subscribers silent
	if calls != 0 {
		t.Errorf("reverted memo should not call subscribers, got %d", calls)
	}
	if effectRuns != 1 {
		t.Errorf("effect should not re-run on a reverted memo, got %d runs", effectRuns)
	}
	if double.Get() != 2 {
		t.Errorf("expected 2, got %d", double.Get())
	}
}

func TestIntegrationEffectChainPropagation(t *testing.T) {
	source := NewSignal(1)
	intermediate := NewSignal(0)

	var final []int
	e1 := NewEffect(func() Cleanup {
		intermediate.Set(source.Get() * 10)
		return nil
	}, AllowWrites())
	defer e1.Dispose()

	e2 := NewEffect(func() Cleanup {
		final = append(final, intermediate.Get())
		return nil
	})
	defer e2.Dispose()

	if len(final) != 1 || final[0] != 10 {
		t.Fatalf("expected [10], got %v", final)
	}

	// The write cascades through e1 into intermediate within one flush
	source.Set(2)
	if len(final) != 2 || final[1] != 20 {
		t.Errorf("expected [10 20], got %v", final)
	}
}

func TestIntegrationDeepMemoChain(t *testing.T) {
	base := NewSignal(1)

	prev := NewMemo(func() int { return base.Get() + 1 })
	chain := []*Memo[int]{prev}
	for i := 0; i < 9; i++ {
		p := prev
		next := NewMemo(func() int { return p.Get() + 1 })
		chain = append(chain, next)
		prev = next
	}

	last := chain[len(chain)-1]
	if last.Get() != 11 {
		t.Errorf("expected 11, got %d", last.Get())
	}

	base.Set(100)
	if last.Get() != 110 {
		t.Errorf("expected 110, got %d", last.Get())
	}
}

func TestIntegrationStatsCounters(t *testing.T) {
	before := Stats()

	s := NewSignal(0)
	m := NewMemo(func() int { return s.Get() })
	e := NewEffect(func() Cleanup {
		_ = m.Get()
		return nil
	})

	s.Set(1)

	mid := Stats()
	if mid.SignalsCreated != before.SignalsCreated+1 {
		t.Errorf("expected signals counter +1, got %d -> %d", before.SignalsCreated, mid.SignalsCreated)
	}
	if mid.MemosCreated != before.MemosCreated+1 {
		t.Errorf("expected memos counter +1, got %d -> %d", before.MemosCreated, mid.MemosCreated)
	}
	if mid.EffectsCreated != before.EffectsCreated+1 {
		t.Errorf("expected effects counter +1, got %d -> %d", before.EffectsCreated, mid.EffectsCreated)
	}
	if mid.Flushes <= before.Flushes {
		t.Errorf("expected flush counter to advance, got %d -> %d", before.Flushes, mid.Flushes)
	}

	active := mid.ActiveEffects
	e.Dispose()
	after := Stats()
	if after.ActiveEffects != active-1 {
		t.Errorf("expected active effects gauge to drop, got %d -> %d", active, after.ActiveEffects)
	}
}
