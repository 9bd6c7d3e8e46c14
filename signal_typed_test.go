package quiver

import (
	"testing"
)

func TestIntSignalOps(t *testing.T) {
	n := NewIntSignal(10)

	n.Inc()
	if n.Get() != 11 {
		t.Errorf("expected 11 after Inc, got %d", n.Get())
	}

	n.Dec()
	if n.Get() != 10 {
		t.Errorf("expected 10 after Dec, got %d", n.Get())
	}

	n.Add(5)
	if n.Get() != 15 {
		t.Errorf("expected 15 after Add, got %d", n.Get())
	}

	n.Sub(3)
	if n.Get() != 12 {
		t.Errorf("expected 12 after Sub, got %d", n.Get())
	}

	n.Mul(2)
	if n.Get() != 24 {
		t.Errorf("expected 24 after Mul, got %d", n.Get())
	}

	n.Div(4)
	if n.Get() != 6 {
		t.Errorf("expected 6 after Div, got %d", n.Get())
	}
}

func TestIntSignalOpsNotify(t *testing.T) {
	n := NewIntSignal(0)
	tracker := newTestTracker()
	WithTracker(tracker, func() { _ = n.Get() })

	n.Inc()
	if tracker.getNotifyCount() != 1 {
		t.Errorf("Inc should notify, got %d", tracker.getNotifyCount())
	}

	// Add(0) leaves the value unchanged: no notification
	n.Add(0)
	if tracker.getNotifyCount() != 1 {
		t.Errorf("no-op Add should not notify, got %d", tracker.getNotifyCount())
	}
}

func TestInt64SignalOps(t *testing.T) {
	n := NewInt64Signal(1 << 40)

	n.Add(1)
	if n.Get() != (1<<40)+1 {
		t.Errorf("expected %d, got %d", (1<<40)+1, n.Get())
	}

	n.Inc()
	n.Dec()
	n.Mul(2)
	n.Div(2)
	n.Sub(1)
	if n.Get() != 1<<40 {
		t.Errorf("expected %d, got %d", 1<<40, n.Get())
	}
}

func TestFloat64SignalOps(t *testing.T) {
	f := NewFloat64Signal(1.5)

	f.Add(0.5)
	if f.Get() != 2.0 {
		t.Errorf("expected 2.0, got %f", f.Get())
	}

	f.Mul(3)
	if f.Get() != 6.0 {
		t.Errorf("expected 6.0, got %f", f.Get())
	}

	f.Div(2)
	f.Sub(1)
	if f.Get() != 2.0 {
		t.Errorf("expected 2.0, got %f", f.Get())
	}
}

func TestBoolSignalOps(t *testing.T) {
	b := NewBoolSignal(false)

	b.Toggle()
	if !b.Get() {
		t.Error("expected true after Toggle")
	}

	b.Toggle()
	if b.Get() {
		t.Error("expected false after second Toggle")
	}

	b.SetTrue()
	if !b.Get() {
		t.Error("expected true after SetTrue")
	}

	b.SetFalse()
	if b.Get() {
		t.Error("expected false after SetFalse")
	}
}

func TestStringSignalOps(t *testing.T) {
	s := NewStringSignal("world")

	s.Prepend("hello ")
	if s.Get() != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", s.Get())
	}

	s.Append("!")
	if s.Get() != "hello world!" {
		t.Errorf("expected %q, got %q", "hello world!", s.Get())
	}

	if s.Len() != 12 {
		t.Errorf("expected length 12, got %d", s.Len())
	}
	if s.IsEmpty() {
		t.Error("expected non-empty")
	}

	s.Clear()
	if !s.IsEmpty() {
		t.Errorf("expected empty after Clear, got %q", s.Get())
	}
}

func TestSliceSignalOps(t *testing.T) {
	items := NewSliceSignal([]string{"b"})

	items.Append("c")
	items.Prepend("a")
	got := items.Get()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("expected [a b c], got %v", got)
	}

	items.InsertAt(1, "x")
	if got := items.Get(); got[1] != "x" {
		t.Errorf("expected x at index 1, got %v", got)
	}

	items.RemoveAt(1)
	items.AppendAll("d", "e")
	if items.Len() != 5 {
		t.Errorf("expected 5 items, got %d", items.Len())
	}

	items.RemoveFirst()
	items.RemoveLast()
	got = items.Get()
	if len(got) != 3 || got[0] != "b" || got[2] != "d" {
		t.Errorf("expected [b c d], got %v", got)
	}

	items.SetAt(0, "B")
	if items.Get()[0] != "B" {
		t.Errorf("expected B at index 0, got %v", items.Get())
	}

	items.UpdateAt(0, func(s string) string { return s + "!" })
	if items.Get()[0] != "B!" {
		t.Errorf("expected B! at index 0, got %v", items.Get())
	}

	items.RemoveWhere(func(s string) bool { return s == "c" })
	if items.Len() != 2 {
		t.Errorf("expected 2 items after RemoveWhere, got %d", items.Len())
	}

	items.Filter(func(s string) bool { return s == "d" })
	if got := items.Get(); len(got) != 1 || got[0] != "d" {
		t.Errorf("expected [d], got %v", got)
	}

	items.Clear()
	if items.Len() != 0 {
		t.Errorf("expected empty after Clear, got %v", items.Get())
	}
}

func TestSliceSignalOutOfBounds(t *testing.T) {
	items := NewSliceSignal([]int{1, 2, 3})
	tracker := newTestTracker()
	WithTracker(tracker, func() { _ = items.Get() })

	// Out-of-bounds operations are no-ops and do not notify
	items.RemoveAt(10)
	items.SetAt(-1, 99)
	items.UpdateAt(7, func(n int) int { return n })

	if tracker.getNotifyCount() != 0 {
		t.Errorf("out-of-bounds ops should not notify, got %d", tracker.getNotifyCount())
	}
}

func TestSliceSignalNilInitial(t *testing.T) {
	items := NewSliceSignal[int](nil)
	if items.Get() == nil {
		t.Error("nil initial should become an empty slice")
	}
	if items.Len() != 0 {
		t.Errorf("expected empty, got %d items", items.Len())
	}
}

func TestSliceSignalUpdateWhere(t *testing.T) {
	items := NewSliceSignal([]int{1, 2, 3, 4})

	items.UpdateWhere(
		func(n int) bool { return n%2 == 0 },
		func(n int) int { return n * 10 },
	)

	got := items.Get()
	want := []int{1, 20, 3, 40}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMapSignalOps(t *testing.T) {
	scores := NewMapSignal(map[string]int{"a": 1})

	scores.SetKey("b", 2)
	if v, ok := scores.GetKey("b"); !ok || v != 2 {
		t.Errorf("expected b=2, got %d (ok=%v)", v, ok)
	}

	if !scores.HasKey("a") {
		t.Error("expected key a present")
	}
	if scores.Len() != 2 {
		t.Errorf("expected 2 keys, got %d", scores.Len())
	}

	scores.UpdateKey("a", func(n int) int { return n + 10 })
	if v, _ := scores.GetKey("a"); v != 11 {
		t.Errorf("expected a=11, got %d", v)
	}

	// Absent key: no-op
	scores.UpdateKey("zzz", func(n int) int { return n + 1 })
	if scores.HasKey("zzz") {
		t.Error("UpdateKey should not create absent keys")
	}

	scores.RemoveKey("b")
	if scores.HasKey("b") {
		t.Error("expected b removed")
	}

	if got := scores.Keys(); len(got) != 1 || got[0] != "a" {
		t.Errorf("expected keys [a], got %v", got)
	}

	scores.Clear()
	if scores.Len() != 0 {
		t.Errorf("expected empty after Clear, got %d keys", scores.Len())
	}
}

func TestMapSignalRemoveAbsentNoNotify(t *testing.T) {
	scores := NewMapSignal(map[string]int{"a": 1})
	tracker := newTestTracker()
	WithTracker(tracker, func() { _ = scores.Get() })

	scores.RemoveKey("missing")
	if tracker.getNotifyCount() != 0 {
		t.Errorf("removing an absent key should not notify, got %d", tracker.getNotifyCount())
	}
}

func TestGlobalSignal(t *testing.T) {
	status := NewGlobalSignal("online")

	if status.Get() != "online" {
		t.Errorf("expected %q, got %q", "online", status.Get())
	}

	status.Set("degraded")
	if status.Get() != "degraded" {
		t.Errorf("expected %q, got %q", "degraded", status.Get())
	}
}

func TestGlobalMemo(t *testing.T) {
	count := NewGlobalSignal(2)
	double := NewGlobalMemo(func() int { return count.Get() * 2 })

	if double.Get() != 4 {
		t.Errorf("expected 4, got %d", double.Get())
	}

	count.Set(10)
	if double.Get() != 20 {
		t.Errorf("expected 20, got %d", double.Get())
	}
}
