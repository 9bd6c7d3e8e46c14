// Package qtrace exports engine activity as OpenTelemetry spans.
//
// The Tracer implements quiver.Instrument. Each flush becomes a
// "quiver.flush" span carrying round and entry counts; memo recomputes
// and effect runs that take at least MinSpanDuration become child spans
// of the flush they ran in. Signal writes and subscriber callbacks are
// not traced; counting those is the metrics package's job.
//
//	tr := qtrace.New(qtrace.WithMinSpanDuration(100 * time.Microsecond))
//	remove := tr.Register()
//	defer remove()
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before wiring the instrument:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	    sdktrace.WithResource(resource.NewWithAttributes(
//	        semconv.SchemaURL,
//	        semconv.ServiceName("my-app"),
//	    )),
//	)
//	otel.SetTracerProvider(tp)
package qtrace

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/quiver-dev/quiver"
)

// Default tracer name for quiver engines.
const defaultTracerName = "quiver"

// Config configures the tracing instrument.
type Config struct {
	// TracerName is the name of the tracer (default: "quiver").
	TracerName string

	// MinSpanDuration drops memo and effect spans shorter than this.
	// The flush span is always emitted. Default: 0 (trace everything).
	MinSpanDuration time.Duration

	// Filter determines which memo and effect spans to emit, by cell
	// name. Return true to trace, false to skip. If nil, all are traced.
	Filter func(name string) bool
}

// Option configures the tracing instrument.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithMinSpanDuration sets the minimum duration for memo and effect
// spans.
func WithMinSpanDuration(d time.Duration) Option {
	return func(c *Config) {
		c.MinSpanDuration = d
	}
}

// WithFilter sets a filter for memo and effect spans by cell name.
func WithFilter(filter func(name string) bool) Option {
	return func(c *Config) {
		c.Filter = filter
	}
}

// defaultConfig returns the default tracing configuration.
func defaultConfig() Config {
	return Config{
		TracerName:      defaultTracerName,
		MinSpanDuration: 0,
		Filter:          nil,
	}
}

// Tracer converts engine events into OpenTelemetry spans.
// It implements quiver.Instrument.
type Tracer struct {
	config Config
	tracer trace.Tracer

	// flights tracks the open flush span per flushing goroutine, so memo
	// and effect spans parent correctly when graphs run concurrently.
	flights sync.Map // goroutine id -> *flight
}

// flight is one in-progress flush span.
type flight struct {
	ctx  context.Context
	span trace.Span
}

var _ quiver.Instrument = (*Tracer)(nil)

// New builds a tracing instrument. The underlying tracer is resolved
// from the global OpenTelemetry tracer provider at this point.
func New(opts ...Option) *Tracer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Tracer{
		config: config,
		tracer: otel.Tracer(config.TracerName),
	}
}

// Register wires the tracer into the engine. The returned function
// unregisters it.
func (t *Tracer) Register() (remove func()) {
	return quiver.RegisterInstrument(t)
}

// FlushStart implements quiver.Instrument: opens the flush span.
func (t *Tracer) FlushStart(depth int) {
	ctx, span := t.tracer.Start(
		context.Background(),
		"quiver.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(time.Now()),
		trace.WithAttributes(attribute.Int("quiver.batch_depth", depth)),
	)
	t.flights.Store(goroutineID(), &flight{ctx: ctx, span: span})
}

// FlushEnd implements quiver.Instrument: records the flush totals and
// closes the span.
func (t *Tracer) FlushEnd(rounds, entries int, d time.Duration) {
	v, ok := t.flights.LoadAndDelete(goroutineID())
	if !ok {
		return
	}
	f := v.(*flight)
	f.span.SetAttributes(
		attribute.Int("quiver.flush_rounds", rounds),
		attribute.Int("quiver.flush_entries", entries),
	)
	f.span.End(trace.WithTimestamp(time.Now()))
}

// MemoRecompute implements quiver.Instrument.
func (t *Tracer) MemoRecompute(id uint64, name string, d time.Duration) {
	t.childSpan("quiver.memo", id, name, d)
}

// EffectRun implements quiver.Instrument.
func (t *Tracer) EffectRun(id uint64, name string, d time.Duration) {
	t.childSpan("quiver.effect", id, name, d)
}

// SignalWrite implements quiver.Instrument. Writes are not traced.
func (t *Tracer) SignalWrite(id uint64, name string) {}

// SubscriberNotify implements quiver.Instrument. Callbacks are not
// traced.
func (t *Tracer) SubscriberNotify(id uint64, name string) {}

// childSpan emits a retrospective span for a completed computation,
// parented under the goroutine's open flush span when there is one.
func (t *Tracer) childSpan(spanName string, id uint64, name string, d time.Duration) {
	if d < t.config.MinSpanDuration {
		return
	}
	if t.config.Filter != nil && !t.config.Filter(name) {
		return
	}

	parent := context.Background()
	if v, ok := t.flights.Load(goroutineID()); ok {
		parent = v.(*flight).ctx
	}

	end := time.Now()
	_, span := t.tracer.Start(
		parent,
		spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(end.Add(-d)),
		trace.WithAttributes(
			attribute.Int64("quiver.cell_id", int64(id)),
			attribute.String("quiver.cell_name", name),
		),
	)
	span.End(trace.WithTimestamp(end))
}

// goroutineID parses the current goroutine's ID from the runtime stack
// header, matching how the engine keys its per-goroutine state.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
