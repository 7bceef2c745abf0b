// Package errors formats command failures for the terminal and maps known
// sentinel errors to a short remediation hint.
package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/peakstreak/internal/keyring"
	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/storage"
)

var hints = []struct {
	target error
	hint   string
}{
	{storage.ErrNotInitialized, "run 'peakstreak init' first"},
	{storage.ErrSchemaTooNew, "upgrade peakstreak to a newer version"},
	{storage.ErrDuplicateName, "choose a different habit name or edit the existing habit"},
	{keyring.ErrKeyringUnavailable, "set PEAKSTREAK_DB_CONNECTION instead of using the OS keyring"},
}

// Hint returns the remediation hint for err, or "" when none applies.
func Hint(err error) string {
	for _, h := range hints {
		if stderrors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix and,
// when known, a hint line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n  Hint: " + hint
	}
	return msg
}

// Report writes the formatted error to w and logs it.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(w, Format(err))
}

// Fatal reports err on stderr and exits with code 1. A nil error is a no-op.
func Fatal(err error) {
	if err != nil {
		Report(os.Stderr, err)
		os.Exit(1)
	}
}
