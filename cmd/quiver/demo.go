package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quiver-dev/quiver"
)

func demoCmd() *cobra.Command {
	var (
		writes  int
		batched bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a small reactive graph and narrate what happens",
		Long: `Build a price/quantity/total graph and write to it.

The demo creates two signals, derives a total through a memo, and
attaches an effect plus a subscriber. Each write shows which parts
of the graph react and in what order.

Examples:
  quiver demo
  quiver demo --writes=5
  quiver demo --batch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(writes, batched)
		},
	}

	cmd.Flags().IntVarP(&writes, "writes", "w", 3, "Number of write rounds")
	cmd.Flags().BoolVar(&batched, "batch", false, "Group each price+quantity update into one batch")

	return cmd
}

func runDemo(writes int, batched bool) error {
	if writes <= 0 {
		return errors.New("--writes must be > 0")
	}

	printBanner()
	fmt.Println("  demo")
	fmt.Println()

	price := quiver.NewSignal(10.0).WithName("price")
	quantity := quiver.NewSignal(1).WithName("quantity")
	total := quiver.NewMemo(func() float64 {
		return price.Get() * float64(quantity.Get())
	}).WithName("total")

	effect := quiver.NewEffect(func() quiver.Cleanup {
		info("effect: total = %.2f", total.Get())
		return nil
	}, quiver.EffectName("demo-printer"))
	defer effect.Dispose()

	unsubscribe := total.Subscribe(func(newValue, oldValue float64) {
		info("subscriber: total %.2f -> %.2f", oldValue, newValue)
	})
	defer unsubscribe()

	for i := 1; i <= writes; i++ {
		fmt.Println()
		if batched {
			info("write round %d: price+1 and quantity+1 in one batch", i)
			quiver.Batch(func() {
				price.Set(price.Peek() + 1)
				quantity.Set(quantity.Peek() + 1)
			})
		} else {
			info("write round %d: price+1, then quantity+1", i)
			price.Set(price.Peek() + 1)
			quantity.Set(quantity.Peek() + 1)
		}
	}

	fmt.Println()
	stats := quiver.Stats()
	success("done: %d writes in %d flushes, %d flush rounds",
		writes*2, stats.Flushes, stats.FlushRounds)
	if !batched {
		info("rerun with --batch to see both writes coalesce into one flush")
	}

	return nil
}
