// Package metrics exports engine activity as Prometheus metrics.
//
// The Collector implements quiver.Instrument, so registering it makes
// every signal write, memo recompute, effect run, and flush observable:
//
//	metrics.Enable()
//	http.Handle("/metrics", promhttp.Handler())
//
// Metrics collected:
//   - quiver_signal_writes_total: Counter of accepted signal writes by cell name
//   - quiver_memo_recompute_seconds: Histogram of memo recompute duration by cell name
//   - quiver_effect_runs_total: Counter of effect runs by effect name
//   - quiver_effect_run_seconds: Histogram of effect run duration by effect name
//   - quiver_subscriber_notifies_total: Counter of subscriber callbacks by cell name
//   - quiver_flushes_total: Counter of completed flushes
//   - quiver_flush_rounds: Histogram of rounds per flush
//   - quiver_flush_duration_seconds: Histogram of flush duration
//   - quiver_active_effects: Gauge of live (undisposed) effects
//
// Unnamed cells are aggregated under the "unnamed" label to keep
// cardinality bounded; name hot cells with WithName to break them out.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/quiver-dev/quiver"
)

// Config configures the metrics collector.
type Config struct {
	// Namespace is the metrics namespace (default: "quiver").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the metrics collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// defaultConfig returns the default collector configuration.
func defaultConfig() Config {
	return Config{
		Namespace:   "quiver",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// roundsBuckets covers the realistic flush-round range. Converged graphs
// finish in a handful of rounds; the top buckets catch cascades.
var roundsBuckets = []float64{1, 2, 3, 4, 5, 8, 13, 21}

// Collector holds the Prometheus instruments and feeds them from engine
// events. It implements quiver.Instrument.
type Collector struct {
	signalWrites       *prometheus.CounterVec
	memoRecompute      *prometheus.HistogramVec
	effectRuns         *prometheus.CounterVec
	effectRunSeconds   *prometheus.HistogramVec
	subscriberNotifies *prometheus.CounterVec
	flushes            prometheus.Counter
	flushRounds        prometheus.Histogram
	flushDuration      prometheus.Histogram
	activeEffects      prometheus.GaugeFunc
}

var _ quiver.Instrument = (*Collector)(nil)

// New builds a collector and registers its instruments on the configured
// registry. Call Register to start feeding it engine events.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		signalWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "signal_writes_total",
			Help:        "Total number of accepted signal writes",
			ConstLabels: config.ConstLabels,
		}, []string{"name"}),

		memoRecompute: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "memo_recompute_seconds",
			Help:        "Memo recompute duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"name"}),

		effectRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect runs",
			ConstLabels: config.ConstLabels,
		}, []string{"name"}),

		effectRunSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_run_seconds",
			Help:        "Effect run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"name"}),

		subscriberNotifies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriber_notifies_total",
			Help:        "Total number of public subscriber callbacks",
			ConstLabels: config.ConstLabels,
		}, []string{"name"}),

		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of completed flushes",
			ConstLabels: config.ConstLabels,
		}),

		flushRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_rounds",
			Help:        "Notification rounds per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     roundsBuckets,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		activeEffects: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_effects",
			Help:        "Number of live (undisposed) effects",
			ConstLabels: config.ConstLabels,
		}, func() float64 {
			return float64(quiver.Stats().ActiveEffects)
		}),
	}
}

// Register wires the collector into the engine. The returned function
// unregisters it.
func (c *Collector) Register() (remove func()) {
	return quiver.RegisterInstrument(c)
}

// labelName keeps label cardinality bounded: unnamed cells share one
// series.
func labelName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return name
}

// SignalWrite implements quiver.Instrument.
func (c *Collector) SignalWrite(id uint64, name string) {
	c.signalWrites.WithLabelValues(labelName(name)).Inc()
}

// MemoRecompute implements quiver.Instrument.
func (c *Collector) MemoRecompute(id uint64, name string, d time.Duration) {
	c.memoRecompute.WithLabelValues(labelName(name)).Observe(d.Seconds())
}

// EffectRun implements quiver.Instrument.
func (c *Collector) EffectRun(id uint64, name string, d time.Duration) {
	c.effectRuns.WithLabelValues(labelName(name)).Inc()
	c.effectRunSeconds.WithLabelValues(labelName(name)).Observe(d.Seconds())
}

// SubscriberNotify implements quiver.Instrument.
func (c *Collector) SubscriberNotify(id uint64, name string) {
	c.subscriberNotifies.WithLabelValues(labelName(name)).Inc()
}

// FlushStart implements quiver.Instrument. Flush accounting happens at
// FlushEnd, when rounds and duration are known.
func (c *Collector) FlushStart(depth int) {}

// FlushEnd implements quiver.Instrument.
func (c *Collector) FlushEnd(rounds, entries int, d time.Duration) {
	c.flushes.Inc()
	c.flushRounds.Observe(float64(rounds))
	c.flushDuration.Observe(d.Seconds())
}

// globalCollector is the singleton created by Enable.
var (
	globalCollector   *Collector
	globalCollectorMu sync.Mutex
)

// Enable creates the package collector once and registers it with the
// engine. Later calls return the same collector; opts are ignored after
// the first call.
func Enable(opts ...Option) *Collector {
	globalCollectorMu.Lock()
	defer globalCollectorMu.Unlock()

	if globalCollector == nil {
		globalCollector = New(opts...)
		globalCollector.Register()
	}
	return globalCollector
}
