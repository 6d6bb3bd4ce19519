// File: cmd/sqlanalyzer/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/cmd"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/observability"
)

const panicLogFile = "panic.log"

// Function variables so tests can replace process-level side effects.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
	execute     = cmd.Execute
)

func main() {
	defer handlePanic()

	// Cancel the command context on SIGINT or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if code := exitCode(execute(ctx)); code != 0 {
		osExit(code)
	}
}

// exitCode maps a command error to the process exit status. An interrupt is
// a clean shutdown, not a failure. cmd.Execute has already logged the error.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	default:
		return 1
	}
}

// handlePanic records an unexpected panic in panic.log and exits non-zero.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(panicMessage), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to write panic log: %v\n", err)
		fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
		osExit(1)
		return
	}

	fmt.Fprintf(os.Stderr, "sqlanalyzer crashed unexpectedly. Details logged to %s\n", panicLogFile)
	osExit(1)
}
