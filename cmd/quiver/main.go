package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗ ┬ ┬┬┬  ┬┌─┐┬─┐
  ║═╬╗│ ││└┐┌┘├┤ ├┬┘
  ╚═╝╚└─┘┴ └┘ └─┘┴└─
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "quiver",
		Short: "Fine-grained reactive state for Go",
		Long: `Quiver is a reactive state engine for Go.

Signals hold values, memos derive them, effects react to them.
Dependencies are tracked automatically at read time, and writes
propagate glitch-free through batched flushes.

  • Auto-tracked signals, memos, and effects
  • Transactional batching with deduplicated notifications
  • Ownership scopes with cascading disposal
  • Prometheus metrics and OpenTelemetry spans
  • Live WebSocket inspector`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(
		demoCmd(),
		serveCmd(),
		benchCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Quiver ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
