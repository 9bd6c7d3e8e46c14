package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quiver-dev/quiver"
)

type benchProfile struct {
	Name    string
	Signals int
	FanOut  int // memos derived per signal
	Effects int
	Writes  int
	Batch   int // writes grouped per batch
}

var benchProfiles = map[string]benchProfile{
	"fast": {
		Name:    "fast",
		Signals: 10,
		FanOut:  2,
		Effects: 10,
		Writes:  10000,
		Batch:   10,
	},
	"standard": {
		Name:    "standard",
		Signals: 100,
		FanOut:  4,
		Effects: 100,
		Writes:  100000,
		Batch:   50,
	},
	"stress": {
		Name:    "stress",
		Signals: 500,
		FanOut:  8,
		Effects: 500,
		Writes:  1000000,
		Batch:   100,
	},
}

func benchCmd() *cobra.Command {
	var (
		profileName string
		writes      int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure in-process propagation throughput",
		Long: `Build a signal/memo/effect graph and hammer it with writes.

Writes are grouped into batches, so each flush fans out through the
memo layer into the effects. The summary reports write throughput
and how much propagation work each flush performed.

For multi-goroutine load and GC profiles, use the standalone
quiver-bench binary instead.

Examples:
  quiver bench
  quiver bench --profile=stress
  quiver bench --profile=fast --writes=50000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(profileName, writes)
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "standard", "Profile: fast|standard|stress")
	cmd.Flags().IntVarP(&writes, "writes", "w", 0, "Override write count (0 = profile default)")

	return cmd
}

func runBench(profileName string, writesOverride int) error {
	prof, ok := benchProfiles[strings.ToLower(strings.TrimSpace(profileName))]
	if !ok {
		return fmt.Errorf("unknown profile %q (want fast, standard, or stress)", profileName)
	}
	if writesOverride > 0 {
		prof.Writes = writesOverride
	}

	printBanner()
	fmt.Println("  bench")
	fmt.Println()
	info("profile: %s (%d signals, fan-out %d, %d effects, %d writes in batches of %d)",
		prof.Name, prof.Signals, prof.FanOut, prof.Effects, prof.Writes, prof.Batch)
	fmt.Println()

	signals := make([]*quiver.Signal[int], prof.Signals)
	for i := range signals {
		signals[i] = quiver.NewSignal(0)
	}

	var memoComputes uint64
	memos := make([]*quiver.Memo[int], 0, prof.Signals*prof.FanOut)
	for i := 0; i < prof.Signals; i++ {
		sig := signals[i]
		for j := 0; j < prof.FanOut; j++ {
			memos = append(memos, quiver.NewMemo(func() int {
				memoComputes++
				return sig.Get() + 1
			}))
		}
	}

	// Own the effects through a scope so teardown is one call.
	var effectRuns uint64
	scope := quiver.NewScope(nil)
	defer scope.Dispose()
	scope.Run(func() {
		for i := 0; i < prof.Effects; i++ {
			memo := memos[i%len(memos)]
			quiver.NewEffect(func() quiver.Cleanup {
				memo.Get()
				effectRuns++
				return nil
			})
		}
	})

	before := quiver.Stats()
	start := time.Now()

	written := 0
	for written < prof.Writes {
		quiver.Batch(func() {
			for i := 0; i < prof.Batch && written < prof.Writes; i++ {
				signals[written%len(signals)].Set(written + 1)
				written++
			}
		})
	}

	elapsed := time.Since(start)
	after := quiver.Stats()

	flushes := after.Flushes - before.Flushes
	rounds := after.FlushRounds - before.FlushRounds
	roundsPerFlush := 0.0
	if flushes > 0 {
		roundsPerFlush = float64(rounds) / float64(flushes)
	}

	fmt.Println()
	success("%d writes in %s", prof.Writes, elapsed.Round(time.Millisecond))
	info("throughput:    %.0f writes/s", float64(prof.Writes)/elapsed.Seconds())
	info("effect runs:   %d (%.2f per write)", effectRuns, float64(effectRuns)/float64(prof.Writes))
	info("memo computes: %d", memoComputes)
	info("flushes:       %d (%.2f rounds avg)", flushes, roundsPerFlush)

	return nil
}
