package quiver

import (
	"strings"
	"testing"
)

func TestScopeAdoptsRootEffects(t *testing.T) {
	count := NewSignal(0)
	runCount := 0

	scope := NewScope(nil)
	scope.Run(func() {
		NewEffect(func() Cleanup {
			_ = count.Get()
			runCount++
			return nil
		})
	})

	count.Set(1)
	if runCount != 2 {
		t.Fatalf("expected 2 runs, got %d", runCount)
	}

	// Disposing the scope disposes the adopted effect
	scope.Dispose()
	count.Set(2)
	if runCount != 2 {
		t.Errorf("effect should be disposed with its scope, got %d runs", runCount)
	}
}

func TestScopeHierarchyDispose(t *testing.T) {
	var order []string

	parent := NewScope(nil)
	child := NewScope(parent)
	grandchild := NewScope(child)

	parent.OnCleanup(func() { order = append(order, "parent") })
	child.OnCleanup(func() { order = append(order, "child") })
	grandchild.OnCleanup(func() { order = append(order, "grandchild") })

	parent.Dispose()

	// Children dispose before their parents' own cleanups
	want := []string{"grandchild", "child", "parent"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}

	if !parent.IsDisposed() || !child.IsDisposed() || !grandchild.IsDisposed() {
		t.Error("all scopes should be disposed")
	}
}

func TestScopeOnCleanupOrder(t *testing.T) {
	var order []int
	scope := NewScope(nil)
	scope.OnCleanup(func() { order = append(order, 1) })
	scope.OnCleanup(func() { order = append(order, 2) })
	scope.OnCleanup(func() { order = append(order, 3) })

	scope.Dispose()

	// Reverse registration order
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("expected [3 2 1], got %v", order)
	}
}

func TestScopeOnCleanupAfterDispose(t *testing.T) {
	scope := NewScope(nil)
	scope.Dispose()

	ran := false
	scope.OnCleanup(func() { ran = true })

	if !ran {
		t.Error("OnCleanup on a disposed scope should run immediately")
	}
}

func TestScopeDoubleDispose(t *testing.T) {
	cleanups := 0
	scope := NewScope(nil)
	scope.OnCleanup(func() { cleanups++ })

	scope.Dispose()
	scope.Dispose()

	if cleanups != 1 {
		t.Errorf("double dispose should run cleanups once, got %d", cleanups)
	}
}

func TestScopeDisposeRemovesFromParent(t *testing.T) {
	parent := NewScope(nil)
	child := NewScope(parent)

	child.Dispose()

	// Parent dispose must not re-dispose the child
	parentCleanups := 0
	parent.OnCleanup(func() { parentCleanups++ })
	parent.Dispose()

	if parentCleanups != 1 {
		t.Errorf("expected parent cleanup once, got %d", parentCleanups)
	}
}

func TestScopeRunOnDisposedPanics(t *testing.T) {
	scope := NewScope(nil)
	scope.Dispose()

	msg := capturePanic(t, func() {
		scope.Run(func() {})
	})
	if !strings.Contains(msg, "[QUIVER E002]") {
		t.Errorf("expected E002 panic, got %q", msg)
	}
}

func TestScopeReentrantRunPanics(t *testing.T) {
	scope := NewScope(nil)
	defer scope.Dispose()

	msg := capturePanic(t, func() {
		scope.Run(func() {
			scope.Run(func() {})
		})
	})
	if !strings.Contains(msg, "[QUIVER E003]") {
		t.Errorf("expected E003 panic, got %q", msg)
	}
}

func TestScopeNestedRunsDifferentScopes(t *testing.T) {
	outer := NewScope(nil)
	defer outer.Dispose()
	inner := NewScope(outer)

	var seen []*Scope
	outer.Run(func() {
		seen = append(seen, getTrackingContext().scope)
		inner.Run(func() {
			seen = append(seen, getTrackingContext().scope)
		})
		seen = append(seen, getTrackingContext().scope)
	})

	if len(seen) != 3 || seen[0] != outer || seen[1] != inner || seen[2] != outer {
		t.Error("ambient scope should nest and restore")
	}
}

func TestScopeEffectAdoptionPrefersEnclosingEffect(t *testing.T) {
	count := NewSignal(0)
	childRuns := 0

	scope := NewScope(nil)
	defer scope.Dispose()

	scope.Run(func() {
		NewEffect(func() Cleanup {
			_ = count.Get()
			NewEffect(func() Cleanup {
				childRuns++
				return nil
			})
			return nil
		})
	})

	if childRuns != 1 {
		t.Fatalf("expected 1 child run, got %d", childRuns)
	}

	// The nested effect belongs to the parent effect, not the scope:
	// a parent re-run recreates it.
	count.Set(1)
	if childRuns != 2 {
		t.Errorf("expected child recreated on parent re-run, got %d", childRuns)
	}
}

func TestScopeValueProvideGet(t *testing.T) {
	region := NewScopeValue("us-east-1")

	scope := NewScope(nil)
	defer scope.Dispose()
	region.Provide(scope, "eu-west-2")

	var got string
	scope.Run(func() {
		got = region.Get()
	})
	if got != "eu-west-2" {
		t.Errorf("expected provided value, got %q", got)
	}

	// Outside the scope, the default applies
	if region.Get() != "us-east-1" {
		t.Errorf("expected default outside scope, got %q", region.Get())
	}
}

func TestScopeValueShadowing(t *testing.T) {
	limit := NewScopeValue(10)

	parent := NewScope(nil)
	defer parent.Dispose()
	child := NewScope(parent)

	limit.Provide(parent, 50)
	limit.Provide(child, 100)

	if limit.GetFrom(child) != 100 {
		t.Errorf("child should shadow parent, got %d", limit.GetFrom(child))
	}
	if limit.GetFrom(parent) != 50 {
		t.Errorf("parent keeps its own binding, got %d", limit.GetFrom(parent))
	}
}

func TestScopeValueInheritance(t *testing.T) {
	limit := NewScopeValue(10)

	parent := NewScope(nil)
	defer parent.Dispose()
	child := NewScope(parent)

	limit.Provide(parent, 50)

	// Child without its own binding resolves through the parent
	if limit.GetFrom(child) != 50 {
		t.Errorf("child should inherit parent binding, got %d", limit.GetFrom(child))
	}
}

func TestScopeValueProvideOnDisposedPanics(t *testing.T) {
	region := NewScopeValue("default")
	scope := NewScope(nil)
	scope.Dispose()

	msg := capturePanic(t, func() {
		region.Provide(scope, "x")
	})
	if !strings.Contains(msg, "[QUIVER E002]") {
		t.Errorf("expected E002 panic, got %q", msg)
	}
}

func TestScopeMemoryUsage(t *testing.T) {
	scope := NewScope(nil)
	defer scope.Dispose()

	base := scope.MemoryUsage()
	if base <= 0 {
		t.Fatalf("expected positive estimate, got %d", base)
	}

	val := NewScopeValue("")
	val.Provide(scope, strings.Repeat("x", 1024))
	child := NewScope(scope)
	_ = child

	grown := scope.MemoryUsage()
	if grown <= base {
		t.Errorf("estimate should grow with contents: %d -> %d", base, grown)
	}
}
