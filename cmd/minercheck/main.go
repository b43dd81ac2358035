package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // Every check passed
	ExitChecksFailed = 1 // The run completed below 100%
	ExitError        = 2 // Usage error; no run happened
)

// HealthCheckFailedError indicates that the run completed but not every
// check passed.
type HealthCheckFailedError struct {
	Passed     int
	Total      int
	Percentage float64
}

func (e *HealthCheckFailedError) Error() string {
	return fmt.Sprintf("health check failed: %d/%d checks passed (%.0f%%)", e.Passed, e.Total, e.Percentage)
}

// exitCode maps an execute error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var failed *HealthCheckFailedError
	if errors.As(err, &failed) {
		return ExitChecksFailed
	}
	return ExitError
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}
