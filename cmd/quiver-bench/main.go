package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/exec"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quiver-dev/quiver"
)

const (
	gib = int64(1024 * 1024 * 1024)

	// sampleEvery controls how often a worker times a batch apply.
	sampleEvery = 256

	// maxSamples bounds collector memory on long stress runs.
	maxSamples = 1 << 20
)

type profile struct {
	Name          string
	Workers       int
	Signals       int // per worker
	FanOut        int // memos derived per signal
	Effects       int // per worker
	Duration      time.Duration
	Batch         int // writes grouped per batch
	MaxProcs      int
	MemLimitBytes int64
}

var profiles = map[string]profile{
	"fast": {
		Name:     "fast",
		Workers:  4,
		Signals:  50,
		FanOut:   2,
		Effects:  25,
		Duration: 10 * time.Second,
		Batch:    10,
	},
	"standard": {
		Name:     "standard",
		Workers:  8,
		Signals:  200,
		FanOut:   4,
		Effects:  100,
		Duration: 30 * time.Second,
		Batch:    50,
	},
	"stress": {
		Name:          "stress",
		Workers:       16,
		Signals:       500,
		FanOut:        8,
		Effects:       250,
		Duration:      60 * time.Second,
		Batch:         100,
		MaxProcs:      4,
		MemLimitBytes: 2 * gib,
	},
}

type benchConfig struct {
	Profile        string
	Workers        int
	Signals        int
	FanOut         int
	Effects        int
	Duration       time.Duration
	Batch          int
	MaxProcs       int
	MemLimitBytes  int64
	JSONOutput     string
	ReportInterval time.Duration
}

type benchCounters struct {
	writes       atomic.Uint64
	effectRuns   atomic.Uint64
	memoComputes atomic.Uint64
}

func main() {
	log.SetFlags(0)

	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.MaxProcs > 0 {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}
	if cfg.MemLimitBytes > 0 {
		debug.SetMemoryLimit(cfg.MemLimitBytes)
	}

	debug.SetGCPercent(100)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	samplesCh := make(chan time.Duration, sampleBuffer(cfg.Workers))
	var samples []time.Duration
	var samplesMu sync.Mutex
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for d := range samplesCh {
			samplesMu.Lock()
			if len(samples) < maxSamples {
				samples = append(samples, d)
			}
			samplesMu.Unlock()
		}
	}()

	var counters benchCounters

	reporterDone := make(chan struct{})
	if cfg.ReportInterval > 0 {
		go reportProgress(ctx, cfg.ReportInterval, &counters, reporterDone)
	} else {
		close(reporterDone)
	}

	statsBefore := quiver.Stats()

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	beforeMetrics := readRuntimeMetrics()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		workerID := i
		go func() {
			defer wg.Done()
			runWorker(ctx, workerID, cfg, &counters, samplesCh)
		}()
	}

	wg.Wait()
	close(samplesCh)
	<-collectorDone
	<-reporterDone

	elapsed := time.Since(start)

	statsAfter := quiver.Stats()

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)
	afterMetrics := readRuntimeMetrics()

	samplesMu.Lock()
	latencies := append([]time.Duration(nil), samples...)
	samplesMu.Unlock()
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	report := buildReport(cfg, elapsed, latencies, &counters, statsBefore, statsAfter, before, after, beforeMetrics, afterMetrics)

	writeSummary(os.Stderr, report)
	if err := writeJSON(cfg.JSONOutput, report); err != nil {
		log.Fatalf("write json: %v", err)
	}
}

// runWorker builds a disjoint signal/memo/effect subgraph and writes into
// it in batches until ctx expires. Flushes run synchronously on the
// writing goroutine, so a timed Batch call covers the full propagation.
func runWorker(ctx context.Context, workerID int, cfg benchConfig, counters *benchCounters, samples chan<- time.Duration) {
	signals := make([]*quiver.Signal[int], cfg.Signals)
	for i := range signals {
		signals[i] = quiver.NewSignal(0)
	}

	memos := make([]*quiver.Memo[int], 0, cfg.Signals*cfg.FanOut)
	for i := 0; i < cfg.Signals; i++ {
		sig := signals[i]
		for j := 0; j < cfg.FanOut; j++ {
			memos = append(memos, quiver.NewMemo(func() int {
				counters.memoComputes.Add(1)
				return sig.Get() + 1
			}))
		}
	}

	scope := quiver.NewScope(nil)
	defer scope.Dispose()
	scope.Run(func() {
		for i := 0; i < cfg.Effects; i++ {
			read := readerFor(signals, memos, i)
			quiver.NewEffect(func() quiver.Cleanup {
				read()
				counters.effectRuns.Add(1)
				return nil
			})
		}
	})

	value := workerID
	apply := func() {
		for i := 0; i < cfg.Batch; i++ {
			value++
			signals[value%len(signals)].Set(value)
		}
	}

	var batches uint64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batches++
		if batches%sampleEvery == 0 {
			begin := time.Now()
			quiver.Batch(apply)
			select {
			case samples <- time.Since(begin):
			default:
			}
		} else {
			quiver.Batch(apply)
		}
		counters.writes.Add(uint64(cfg.Batch))
	}
}

// readerFor picks the node an effect observes. With no memo layer the
// effects track signals directly.
func readerFor(signals []*quiver.Signal[int], memos []*quiver.Memo[int], i int) func() int {
	if len(memos) > 0 {
		memo := memos[i%len(memos)]
		return func() int { return memo.Get() }
	}
	sig := signals[i%len(signals)]
	return func() int { return sig.Get() }
}

func reportProgress(ctx context.Context, interval time.Duration, counters *benchCounters, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastWrites, lastRuns uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writes := counters.writes.Load()
			runs := counters.effectRuns.Load()
			log.Printf("progress: +%d writes, +%d effect runs", writes-lastWrites, runs-lastRuns)
			lastWrites, lastRuns = writes, runs
		}
	}
}

func sampleBuffer(workers int) int {
	if workers < 1 {
		return 1024
	}
	buf := workers * 4
	if buf < 1024 {
		buf = 1024
	}
	return buf
}

func parseConfig() (benchConfig, error) {
	profileFlag := flag.String("profile", "standard", "profile: fast|standard|stress")
	workersFlag := flag.Int("workers", -1, "number of concurrent writer goroutines")
	signalsFlag := flag.Int("signals", -1, "signals per worker")
	fanoutFlag := flag.Int("fanout", -1, "memos derived per signal")
	effectsFlag := flag.Int("effects", -1, "effects per worker")
	durationFlag := flag.String("duration", "", "benchmark duration, e.g. 30s")
	batchFlag := flag.Int("batch", -1, "writes grouped per batch")
	maxProcsFlag := flag.Int("max-procs", -1, "GOMAXPROCS cap (0 to leave unchanged)")
	memLimitFlag := flag.String("mem-limit", "", "GOMEMLIMIT (e.g. 2GiB)")
	jsonFlag := flag.String("json", "-", "JSON output path ('-' for stdout)")
	reportFlag := flag.String("report-interval", "", "progress log interval (0 to disable)")
	flag.Parse()

	name := strings.ToLower(strings.TrimSpace(*profileFlag))
	if name == "" {
		name = "standard"
	}

	base, ok := profiles[name]
	if !ok {
		return benchConfig{}, fmt.Errorf("unknown profile %q", name)
	}

	cfg := benchConfig{
		Profile:       base.Name,
		Workers:       base.Workers,
		Signals:       base.Signals,
		FanOut:        base.FanOut,
		Effects:       base.Effects,
		Duration:      base.Duration,
		Batch:         base.Batch,
		MaxProcs:      base.MaxProcs,
		MemLimitBytes: base.MemLimitBytes,
		JSONOutput:    strings.TrimSpace(*jsonFlag),
	}

	if *workersFlag != -1 {
		cfg.Workers = *workersFlag
	}
	if *signalsFlag != -1 {
		cfg.Signals = *signalsFlag
	}
	if *fanoutFlag != -1 {
		cfg.FanOut = *fanoutFlag
	}
	if *effectsFlag != -1 {
		cfg.Effects = *effectsFlag
	}
	if *durationFlag != "" {
		d, err := time.ParseDuration(*durationFlag)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid -duration: %w", err)
		}
		cfg.Duration = d
	}
	if *batchFlag != -1 {
		cfg.Batch = *batchFlag
	}
	if *maxProcsFlag != -1 {
		cfg.MaxProcs = *maxProcsFlag
	}
	if *memLimitFlag != "" {
		limit, err := parseBytes(*memLimitFlag)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid -mem-limit: %w", err)
		}
		cfg.MemLimitBytes = limit
	}
	if *reportFlag != "" {
		d, err := time.ParseDuration(*reportFlag)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid -report-interval: %w", err)
		}
		cfg.ReportInterval = d
	}
	if cfg.JSONOutput == "" {
		cfg.JSONOutput = "-"
	}

	if cfg.Workers <= 0 {
		return benchConfig{}, errors.New("-workers must be > 0")
	}
	if cfg.Signals <= 0 {
		return benchConfig{}, errors.New("-signals must be > 0")
	}
	if cfg.FanOut < 0 {
		return benchConfig{}, errors.New("-fanout must be >= 0")
	}
	if cfg.Effects < 0 {
		return benchConfig{}, errors.New("-effects must be >= 0")
	}
	if cfg.Duration <= 0 {
		return benchConfig{}, errors.New("-duration must be > 0")
	}
	if cfg.Batch <= 0 {
		return benchConfig{}, errors.New("-batch must be > 0")
	}
	if cfg.MaxProcs < 0 {
		return benchConfig{}, errors.New("-max-procs must be >= 0")
	}
	if cfg.MemLimitBytes < 0 {
		return benchConfig{}, errors.New("-mem-limit must be >= 0")
	}
	if cfg.ReportInterval < 0 {
		return benchConfig{}, errors.New("-report-interval must be >= 0")
	}

	return cfg, nil
}

func parseBytes(input string) (int64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, errors.New("empty size")
	}

	var i int
	for i < len(s) {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '.' {
			i++
			continue
		}
		break
	}
	if i == 0 {
		return 0, fmt.Errorf("invalid size %q", input)
	}

	numPart := strings.TrimSpace(s[:i])
	suffix := strings.ToLower(strings.TrimSpace(s[i:]))

	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, err
	}

	multiplier := float64(1)
	switch suffix {
	case "", "b":
		multiplier = 1
	case "kb":
		multiplier = 1e3
	case "mb":
		multiplier = 1e6
	case "gb":
		multiplier = 1e9
	case "tb":
		multiplier = 1e12
	case "kib":
		multiplier = 1024
	case "mib":
		multiplier = 1024 * 1024
	case "gib":
		multiplier = 1024 * 1024 * 1024
	case "tib":
		multiplier = 1024 * 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size suffix %q", suffix)
	}

	bytes := value * multiplier
	if bytes < 0 {
		return 0, fmt.Errorf("invalid size %q", input)
	}

	return int64(bytes + 0.5), nil
}

type runtimeMetricsSnapshot struct {
	cpuTotalSeconds float64
	cpuGCSeconds    float64

	heapAllocsBytes   uint64
	heapAllocsObjects uint64
}

func readRuntimeMetrics() runtimeMetricsSnapshot {
	samples := []metrics.Sample{
		{Name: "/cpu/classes/total:cpu-seconds"},
		{Name: "/cpu/classes/gc/total:cpu-seconds"},
		{Name: "/gc/heap/allocs:bytes"},
		{Name: "/gc/heap/allocs:objects"},
	}
	metrics.Read(samples)

	var out runtimeMetricsSnapshot
	for _, s := range samples {
		switch s.Name {
		case "/cpu/classes/total:cpu-seconds":
			out.cpuTotalSeconds = s.Value.Float64()
		case "/cpu/classes/gc/total:cpu-seconds":
			out.cpuGCSeconds = s.Value.Float64()
		case "/gc/heap/allocs:bytes":
			out.heapAllocsBytes = s.Value.Uint64()
		case "/gc/heap/allocs:objects":
			out.heapAllocsObjects = s.Value.Uint64()
		}
	}
	return out
}

func cpuFraction(after, before runtimeMetricsSnapshot) float64 {
	total := after.cpuTotalSeconds - before.cpuTotalSeconds
	if total <= 0 {
		return 0
	}
	gc := after.cpuGCSeconds - before.cpuGCSeconds
	if gc < 0 {
		return 0
	}
	return gc / total
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func avgPause(after, before runtime.MemStats) time.Duration {
	gcCount := after.NumGC - before.NumGC
	if gcCount == 0 {
		return 0
	}
	return time.Duration((after.PauseTotalNs - before.PauseTotalNs) / uint64(gcCount))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type benchReport struct {
	Version    string         `json:"version"`
	Run        runInfo        `json:"run"`
	Workload   workloadInfo   `json:"workload"`
	LatencyMS  latencyInfo    `json:"latency_ms"`
	Throughput throughputInfo `json:"throughput"`
	Flush      flushInfo      `json:"flush"`
	GC         gcInfo         `json:"gc"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
	GitCommit string `json:"git_commit,omitempty"`
}

type workloadInfo struct {
	Profile          string `json:"profile"`
	Workers          int    `json:"workers"`
	SignalsPerWorker int    `json:"signals_per_worker"`
	FanOut           int    `json:"fanout"`
	EffectsPerWorker int    `json:"effects_per_worker"`
	DurationMS       int64  `json:"duration_ms"`
	Batch            int    `json:"batch"`
	MaxProcs         int    `json:"max_procs"`
	MemLimitBytes    int64  `json:"mem_limit_bytes"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type throughputInfo struct {
	WritesTotal        uint64  `json:"writes_total"`
	WritesPerSec       float64 `json:"writes_per_sec"`
	WritesPerSecWorker float64 `json:"writes_per_sec_per_worker"`
	EffectRuns         uint64  `json:"effect_runs_total"`
	MemoComputes       uint64  `json:"memo_computes_total"`
	EffectRunsPerWrite float64 `json:"effect_runs_per_write"`
}

type flushInfo struct {
	Flushes        uint64  `json:"flushes_total"`
	Rounds         uint64  `json:"flush_rounds_total"`
	RoundsPerFlush float64 `json:"rounds_per_flush"`
}

type gcInfo struct {
	AllocMB       float64 `json:"alloc_mb"`
	HeapLiveMB    float64 `json:"heap_live_mb"`
	NumGC         uint32  `json:"num_gc"`
	PauseTotalMS  float64 `json:"pause_total_ms"`
	PauseAvgMS    float64 `json:"pause_avg_ms"`
	GCCPUFraction float64 `json:"gc_cpu_fraction"`
	AllocsObjects uint64  `json:"allocs_objects"`
}

func buildReport(
	cfg benchConfig,
	elapsed time.Duration,
	latencies []time.Duration,
	counters *benchCounters,
	statsBefore quiver.EngineStats,
	statsAfter quiver.EngineStats,
	before runtime.MemStats,
	after runtime.MemStats,
	beforeMetrics runtimeMetricsSnapshot,
	afterMetrics runtimeMetricsSnapshot,
) benchReport {
	writesTotal := counters.writes.Load()
	effectRuns := counters.effectRuns.Load()
	memoComputes := counters.memoComputes.Load()

	elapsedSeconds := math.Max(0.001, elapsed.Seconds())
	writesPerSec := float64(writesTotal) / elapsedSeconds
	writesPerSecWorker := writesPerSec / float64(cfg.Workers)

	effectRunsPerWrite := 0.0
	if writesTotal > 0 {
		effectRunsPerWrite = float64(effectRuns) / float64(writesTotal)
	}

	latency := latencyInfo{}
	if len(latencies) > 0 {
		latency = latencyInfo{
			Min: ms(latencies[0]),
			P50: ms(percentile(latencies, 0.50)),
			P95: ms(percentile(latencies, 0.95)),
			P99: ms(percentile(latencies, 0.99)),
			Max: ms(latencies[len(latencies)-1]),
		}
	}

	flushes := statsAfter.Flushes - statsBefore.Flushes
	rounds := statsAfter.FlushRounds - statsBefore.FlushRounds
	roundsPerFlush := 0.0
	if flushes > 0 {
		roundsPerFlush = float64(rounds) / float64(flushes)
	}

	pauseTotal := time.Duration(after.PauseTotalNs - before.PauseTotalNs)
	pauseAvg := avgPause(after, before)

	return benchReport{
		Version: "1",
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
			GitCommit: gitCommit(),
		},
		Workload: workloadInfo{
			Profile:          cfg.Profile,
			Workers:          cfg.Workers,
			SignalsPerWorker: cfg.Signals,
			FanOut:           cfg.FanOut,
			EffectsPerWorker: cfg.Effects,
			DurationMS:       cfg.Duration.Milliseconds(),
			Batch:            cfg.Batch,
			MaxProcs:         cfg.MaxProcs,
			MemLimitBytes:    cfg.MemLimitBytes,
		},
		LatencyMS: latency,
		Throughput: throughputInfo{
			WritesTotal:        writesTotal,
			WritesPerSec:       writesPerSec,
			WritesPerSecWorker: writesPerSecWorker,
			EffectRuns:         effectRuns,
			MemoComputes:       memoComputes,
			EffectRunsPerWrite: effectRunsPerWrite,
		},
		Flush: flushInfo{
			Flushes:        flushes,
			Rounds:         rounds,
			RoundsPerFlush: roundsPerFlush,
		},
		GC: gcInfo{
			AllocMB:       float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			HeapLiveMB:    float64(after.HeapAlloc) / (1024 * 1024),
			NumGC:         after.NumGC - before.NumGC,
			PauseTotalMS:  ms(pauseTotal),
			PauseAvgMS:    ms(pauseAvg),
			GCCPUFraction: cpuFraction(afterMetrics, beforeMetrics),
			AllocsObjects: afterMetrics.heapAllocsObjects - beforeMetrics.heapAllocsObjects,
		},
	}
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== Quiver Engine Benchmark ===")
	fmt.Fprintf(w, "Profile: %s\n", report.Workload.Profile)
	fmt.Fprintf(w, "Workers: %d\n", report.Workload.Workers)
	fmt.Fprintf(w, "Duration: %s\n", time.Duration(report.Workload.DurationMS)*time.Millisecond)
	fmt.Fprintf(w, "Graph per worker: %d signals, fan-out %d, %d effects\n",
		report.Workload.SignalsPerWorker, report.Workload.FanOut, report.Workload.EffectsPerWorker)
	fmt.Fprintf(w, "Batch size: %d writes\n", report.Workload.Batch)
	if report.Workload.MaxProcs > 0 {
		fmt.Fprintf(w, "GOMAXPROCS cap: %d\n", report.Workload.MaxProcs)
	}
	if report.Workload.MemLimitBytes > 0 {
		fmt.Fprintf(w, "GOMEMLIMIT cap: %.2f GiB\n", float64(report.Workload.MemLimitBytes)/float64(gib))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total writes: %d\n", report.Throughput.WritesTotal)
	fmt.Fprintf(w, "Throughput: %.0f writes/s (%.0f per worker)\n", report.Throughput.WritesPerSec, report.Throughput.WritesPerSecWorker)
	fmt.Fprintf(w, "Effect runs: %d (%.2f per write)\n", report.Throughput.EffectRuns, report.Throughput.EffectRunsPerWrite)
	fmt.Fprintf(w, "Memo computes: %d\n", report.Throughput.MemoComputes)
	fmt.Fprintf(w, "Flushes: %d (%.2f rounds avg)\n", report.Flush.Flushes, report.Flush.RoundsPerFlush)
	fmt.Fprintln(w)

	if report.LatencyMS.Max == 0 {
		fmt.Fprintln(w, "No latency samples recorded.")
	} else {
		fmt.Fprintln(w, "Batch apply (write + synchronous flush, sampled):")
		fmt.Fprintf(w, "  min: %.3f ms\n", report.LatencyMS.Min)
		fmt.Fprintf(w, "  p50: %.3f ms\n", report.LatencyMS.P50)
		fmt.Fprintf(w, "  p95: %.3f ms\n", report.LatencyMS.P95)
		fmt.Fprintf(w, "  p99: %.3f ms\n", report.LatencyMS.P99)
		fmt.Fprintf(w, "  max: %.3f ms\n", report.LatencyMS.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC (process-wide):")
	fmt.Fprintf(w, "  alloc:     %.2f MB\n", report.GC.AllocMB)
	fmt.Fprintf(w, "  heap_live: %.2f MB\n", report.GC.HeapLiveMB)
	fmt.Fprintf(w, "  num_gc:    %d\n", report.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (total)\n", report.GC.PauseTotalMS)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (avg)\n", report.GC.PauseAvgMS)
	fmt.Fprintf(w, "  gc_cpu:    %.2f%%\n", report.GC.GCCPUFraction*100)
}

func writeJSON(path string, report benchReport) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func gitCommit() string {
	if val := strings.TrimSpace(os.Getenv("QUIVER_GIT_COMMIT")); val != "" {
		return val
	}
	if val := strings.TrimSpace(os.Getenv("GIT_COMMIT")); val != "" {
		return val
	}
	cmd := exec.Command("git", "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
