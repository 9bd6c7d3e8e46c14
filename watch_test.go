package quiver

import (
	"strings"
	"testing"
)

func TestWatch(t *testing.T) {
	temp := NewSignal(20.0)

	var seen []float64
	e := Watch(temp, func(v float64) {
		seen = append(seen, v)
	})
	defer e.Dispose()

	// Called immediately with the current value
	if len(seen) != 1 || seen[0] != 20.0 {
		t.Fatalf("expected initial call with 20, got %v", seen)
	}

	temp.Set(25.0)
	if len(seen) != 2 || seen[1] != 25.0 {
		t.Errorf("expected [20 25], got %v", seen)
	}

	e.Dispose()
	temp.Set(30.0)
	if len(seen) != 2 {
		t.Errorf("disposed watch should not fire, got %v", seen)
	}
}

func TestWatchMemo(t *testing.T) {
	count := NewSignal(2)
	double := NewMemo(func() int { return count.Get() * 2 })

	var seen []int
	e := Watch(double, func(v int) {
		seen = append(seen, v)
	})
	defer e.Dispose()

	count.Set(5)

	if len(seen) != 2 || seen[0] != 4 || seen[1] != 10 {
		t.Errorf("expected [4 10], got %v", seen)
	}
}

func TestOnChange(t *testing.T) {
	status := NewSignal("idle")

	var seen []string
	e := OnChange(status, func(v string) {
		seen = append(seen, v)
	})
	defer e.Dispose()

	// No initial call
	if len(seen) != 0 {
		t.Fatalf("OnChange should skip the initial value, got %v", seen)
	}

	status.Set("running")
	status.Set("done")

	if len(seen) != 2 || seen[0] != "running" || seen[1] != "done" {
		t.Errorf("expected [running done], got %v", seen)
	}
}

func TestOnCleanupInsideEffect(t *testing.T) {
	count := NewSignal(0)
	cleanups := 0

	e := NewEffect(func() Cleanup {
		_ = count.Get()
		OnCleanup(func() { cleanups++ })
		return nil
	})

	if cleanups != 0 {
		t.Fatalf("cleanup should not run during the first run, got %d", cleanups)
	}

	// Re-run triggers the previous run's cleanup
	count.Set(1)
	if cleanups != 1 {
		t.Errorf("expected 1 cleanup before re-run, got %d", cleanups)
	}

	e.Dispose()
	if cleanups != 2 {
		t.Errorf("expected 2 cleanups after dispose, got %d", cleanups)
	}
}

func TestOnCleanupInsideScope(t *testing.T) {
	cleanups := 0

	scope := NewScope(nil)
	scope.Run(func() {
		OnCleanup(func() { cleanups++ })
	})

	if cleanups != 0 {
		t.Fatalf("cleanup should wait for scope disposal, got %d", cleanups)
	}

	scope.Dispose()
	if cleanups != 1 {
		t.Errorf("expected 1 cleanup on scope dispose, got %d", cleanups)
	}
}

func TestOnCleanupOutsideAnything(t *testing.T) {
	// Nothing to attach to: the registration is dropped without panicking.
	OnCleanup(func() {
		t.Error("orphan cleanup should never run")
	})
}

func TestOnCleanupOutsideAnythingDevMode(t *testing.T) {
	prev := DevMode
	DevMode = true
	defer func() { DevMode = prev }()

	msg := capturePanic(t, func() {
		OnCleanup(func() {})
	})
	if !strings.Contains(msg, "E005") {
		t.Errorf("expected E005 panic, got %q", msg)
	}
}
