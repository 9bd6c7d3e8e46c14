package quiver

import (
	"fmt"
	"log"
)

// DevMode escalates silently-degraded misuse into panics, such as an
// OnCleanup registration with no owning effect or scope (code E005).
// Set this at application startup:
//
//	func main() {
//	    quiver.DevMode = os.Getenv("QUIVER_DEV") == "1"
//	    // ...
//	}
var DevMode = false

// StrictMode controls how suspicious writes are handled.
type StrictMode int

const (
	// StrictAllow disables detection. No warnings or errors.
	StrictAllow StrictMode = iota

	// StrictWarn logs a warning for each occurrence. Recommended during
	// development to surface bugs without breaking existing code.
	StrictWarn

	// StrictPanic panics on the first occurrence. Use in tests or strict
	// development environments.
	StrictPanic
)

// StrictMemoWrites controls detection of signal writes during memo
// evaluation. A memo's compute function is supposed to be pure: a write
// from inside it dirties state mid-propagation and usually indicates a
// memo that should have been an effect. Panics carry code E001.
var StrictMemoWrites = StrictWarn

// StrictEffectWrites controls detection of signal writes during effect
// bodies. Effect writes are legal (convergent write-backs are part of the
// design), so detection is off by default; enable it to audit cascades.
// The AllowWrites option exempts individual effects.
var StrictEffectWrites = StrictAllow

// DebugConfig controls debug logging for development.
type DebugConfig struct {
	// LogFlushRounds logs each flush round with entry counts.
	// Useful for seeing how many rounds a write cascades through.
	// Default: false.
	LogFlushRounds bool

	// LogRecomputes logs each memo recomputation.
	// Default: false.
	LogRecomputes bool

	// LogEffectRuns logs each effect run.
	// Useful for debugging re-run storms.
	// Default: false.
	LogEffectRuns bool

	// LogSubscriberCalls logs public subscriber notification.
	// Default: false.
	LogSubscriberCalls bool

	// IncludeNames includes WithName labels in debug messages.
	// Default: true.
	IncludeNames bool
}

// DefaultDebugConfig returns a DebugConfig with logging disabled and
// name labels on.
func DefaultDebugConfig() DebugConfig {
	return DebugConfig{
		IncludeNames: true,
	}
}

// Debug is the global debug configuration.
// Modify at application startup to enable debugging features.
var Debug = DefaultDebugConfig()

// debugLabel formats a primitive for debug messages.
func debugLabel(id uint64, name string) string {
	if name != "" && Debug.IncludeNames {
		return fmt.Sprintf("%q(#%d)", name, id)
	}
	return fmt.Sprintf("#%d", id)
}

// checkTrackedWrite enforces the strict-write modes. Called on every
// changed write while a tracker is active: a memo evaluation hits the
// StrictMemoWrites policy, an effect body without AllowWrites hits the
// StrictEffectWrites policy.
func checkTrackedWrite() {
	t := activeTracker()
	if t == nil {
		return
	}

	if _, ok := t.(memoMarker); ok {
		switch StrictMemoWrites {
		case StrictWarn:
			log.Printf("[quiver] signal write during memo evaluation; memo computations should be pure")
		case StrictPanic:
			codedPanic(codeStrictWrite, "signal write during memo evaluation; memo computations must be pure")
		}
		return
	}

	if e, ok := t.(*Effect); ok && !e.allowWrites {
		switch StrictEffectWrites {
		case StrictWarn:
			log.Printf("[quiver] signal write during effect %s; add AllowWrites() if intended", debugLabel(e.id, e.name))
		case StrictPanic:
			codedPanic(codeStrictWrite, "signal write during effect body without AllowWrites()")
		}
	}
}
