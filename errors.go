package quiver

import "fmt"

// Engine misuse panics carry a stable code so callers can match them in
// recover handlers and tests without depending on message wording.
//
//	E001: signal write under a StrictPanic write policy
//	E002: Run or Provide on a disposed scope
//	E003: re-entrant Run on the same scope
//	E004: flush budget exceeded (FlushBudget.Mode = BudgetPanic)
//	E005: OnCleanup with no owning effect or scope (DevMode only)
const (
	codeStrictWrite    = "E001"
	codeScopeDisposed  = "E002"
	codeScopeReentrant = "E003"
	codeBudgetExceeded = "E004"
	codeOrphanCleanup  = "E005"
)

// codedPanic panics with a bracketed code prefix, the format used for all
// engine misuse panics.
func codedPanic(code, format string, args ...any) {
	panic(fmt.Sprintf("[QUIVER %s] %s", code, fmt.Sprintf(format, args...)))
}
