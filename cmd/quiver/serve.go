package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quiver-dev/quiver"
	"github.com/quiver-dev/quiver/pkg/devtools"
	"github.com/quiver-dev/quiver/pkg/metrics"
	"github.com/quiver-dev/quiver/pkg/store"
)

func serveCmd() *cobra.Command {
	var (
		addr          string
		enableMetrics bool
		interval      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a ticking demo graph behind the devtools inspector",
		Long: `Start the devtools server over a continuously updating graph.

A ticker signal and two derived memos are registered in the default
store, so every endpoint has live data to show:

  /healthz   liveness probe
  /snapshot  cells and engine counters as JSON
  /metrics   Prometheus metrics
  /ws        WebSocket stream of engine events

Examples:
  quiver serve
  quiver serve --addr=0.0.0.0:6360
  quiver serve --interval=100ms --metrics=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, enableMetrics, interval)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:6360", "Address to listen on")
	cmd.Flags().BoolVar(&enableMetrics, "metrics", true, "Export engine metrics to Prometheus")
	cmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "Demo write interval")

	return cmd
}

func runServe(addr string, enableMetrics bool, interval time.Duration) error {
	printBanner()
	fmt.Println("  serve")
	fmt.Println()

	if enableMetrics {
		metrics.Enable()
	} else {
		warn("engine metrics disabled; /metrics serves process metrics only")
	}

	// Demo graph, registered in the default store so /snapshot has
	// something to show.
	st := store.Default()
	tick := store.Signal(st, "tick", 0)
	store.Memo(st, "tick.doubled", func() int {
		return tick.Get() * 2
	})
	store.Memo(st, "tick.parity", func() string {
		if tick.Get()%2 == 0 {
			return "even"
		}
		return "odd"
	})

	effect := quiver.NewEffect(func() quiver.Cleanup {
		tick.Get()
		return nil
	}, quiver.EffectName("tick-watcher"))
	defer effect.Dispose()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				tick.Update(func(v int) int { return v + 1 })
			}
		}
	}()

	info("demo graph ticking every %s", interval)
	success("devtools on http://%s", addr)
	info("snapshot:  http://%s/snapshot", addr)
	info("events:    ws://%s/ws", addr)
	fmt.Println()

	srv := devtools.New(
		devtools.WithAddr(addr),
		devtools.WithStore(st),
	)
	return srv.Run()
}
