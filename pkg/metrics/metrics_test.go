package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quiver-dev/quiver"
)

// counterValue finds a counter series by family name and optional label
// pair. Returns -1 when the series is absent.
func counterValue(t *testing.T, reg *prometheus.Registry, family, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != family {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}

// histogramCount finds a histogram series sample count by family name
// and optional label pair. Returns -1 when the series is absent.
func histogramCount(t *testing.T, reg *prometheus.Registry, family, label, value string) int64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != family {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" {
				return int64(m.GetHistogram().GetSampleCount())
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return int64(m.GetHistogram().GetSampleCount())
				}
			}
		}
	}
	return -1
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, family string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != family {
			continue
		}
		for _, m := range mf.GetMetric() {
			return m.GetGauge().GetValue()
		}
	}
	return -1
}

func TestCollectorCountsEngineEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg))
	remove := c.Register()
	defer remove()

	price := quiver.NewSignal(10.0).WithName("price")
	total := quiver.NewMemo(func() float64 { return price.Get() * 2 }).WithName("total")
	e := quiver.NewEffect(func() quiver.Cleanup {
		_ = total.Get()
		return nil
	}, quiver.EffectName("printer"))
	defer e.Dispose()

	price.Set(12.5)

	if v := counterValue(t, reg, "quiver_signal_writes_total", "name", "price"); v != 1 {
		t.Errorf("expected 1 signal write, got %v", v)
	}
	if v := counterValue(t, reg, "quiver_effect_runs_total", "name", "printer"); v != 2 {
		t.Errorf("expected 2 effect runs (initial + rerun), got %v", v)
	}
	if v := histogramCount(t, reg, "quiver_memo_recompute_seconds", "name", "total"); v != 2 {
		t.Errorf("expected 2 memo recomputes, got %v", v)
	}
	if v := counterValue(t, reg, "quiver_flushes_total", "", ""); v < 1 {
		t.Errorf("expected at least 1 flush, got %v", v)
	}
	if v := histogramCount(t, reg, "quiver_flush_rounds", "", ""); v < 1 {
		t.Errorf("expected flush rounds observed, got %v", v)
	}
}

func TestActiveEffectsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg))
	remove := c.Register()
	defer remove()

	before := gaugeValue(t, reg, "quiver_active_effects")

	sig := quiver.NewSignal(0)
	e := quiver.NewEffect(func() quiver.Cleanup {
		_ = sig.Get()
		return nil
	})

	during := gaugeValue(t, reg, "quiver_active_effects")
	if during != before+1 {
		t.Errorf("expected gauge %v while effect alive, got %v", before+1, during)
	}

	e.Dispose()
	after := gaugeValue(t, reg, "quiver_active_effects")
	if after != before {
		t.Errorf("expected gauge back to %v after dispose, got %v", before, after)
	}
}

func TestUnnamedCellsShareSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg))
	remove := c.Register()
	defer remove()

	a := quiver.NewSignal(1)
	b := quiver.NewSignal(1)
	a.Set(2)
	b.Set(2)

	if v := counterValue(t, reg, "quiver_signal_writes_total", "name", "unnamed"); v != 2 {
		t.Errorf("expected 2 writes under the unnamed series, got %v", v)
	}
}

func TestSubscriberNotifiesCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg))
	remove := c.Register()
	defer remove()

	sig := quiver.NewSignal(0).WithName("watched")
	defer sig.Subscribe(func(newValue, oldValue int) {})()

	sig.Set(1)

	if v := counterValue(t, reg, "quiver_subscriber_notifies_total", "name", "watched"); v != 1 {
		t.Errorf("expected 1 subscriber notify, got %v", v)
	}
}

func TestRegisterRemove(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg))
	remove := c.Register()

	sig := quiver.NewSignal(0).WithName("transient")
	sig.Set(1)
	remove()
	sig.Set(2)

	if v := counterValue(t, reg, "quiver_signal_writes_total", "name", "transient"); v != 1 {
		t.Errorf("expected 1 write counted before removal, got %v", v)
	}
}

func TestCustomNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg), WithNamespace("myapp"), WithSubsystem("reactive"))
	remove := c.Register()
	defer remove()

	sig := quiver.NewSignal(0).WithName("x")
	sig.Set(1)

	if v := counterValue(t, reg, "myapp_reactive_signal_writes_total", "name", "x"); v != 1 {
		t.Errorf("expected namespaced series, got %v", v)
	}
}

func TestEnableSingleton(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := Enable(WithRegistry(reg))
	second := Enable(WithRegistry(prometheus.NewRegistry()))

	if first == nil {
		t.Fatal("expected collector from Enable")
	}
	if first != second {
		t.Error("expected Enable to return the same collector")
	}
}
