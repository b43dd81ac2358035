// Package execution runs local commands on behalf of probes.
package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/basilica-ai/minercheck/internal/checks"
)

// DefaultTimeout bounds commands that do not set their own timeout.
const DefaultTimeout = 10 * time.Second

// Command describes one external command invocation.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// String renders the command line for messages and logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is what a command produced. Err is set when the command did not exit 0.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
	// TimedOut is set when the command was killed at its deadline.
	TimedOut bool
	// NotFound is set when the executable could not be resolved.
	NotFound bool
}

// OK reports whether the command ran and exited 0.
func (r Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Kind classifies a failed result.
func (r Result) Kind() checks.Kind {
	switch {
	case r.OK():
		return ""
	case r.TimedOut:
		return checks.KindTimeout
	case r.NotFound:
		return checks.KindEnvironmentMissing
	default:
		return checks.KindCheckFailed
	}
}

// Detail describes a failed result in one line.
func (r Result) Detail() string {
	switch {
	case r.OK():
		return ""
	case r.TimedOut:
		return "command timed out"
	case r.NotFound:
		return r.Err.Error()
	}
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return fmt.Sprintf("exit status %d", r.ExitCode)
}

// Runner runs local commands.
type Runner interface {
	// Run executes cmd and never returns a Go error: every failure is in the Result.
	Run(ctx context.Context, cmd Command) Result
	// LookPath resolves an executable on PATH.
	LookPath(name string) (string, error)
}

// LocalRunner runs commands with os/exec.
type LocalRunner struct {
	// DefaultTimeout applies when a Command has no timeout. Zero means DefaultTimeout.
	DefaultTimeout time.Duration
}

var _ Runner = (*LocalRunner)(nil)

// NewLocalRunner creates a runner using the package default timeout.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{DefaultTimeout: DefaultTimeout}
}

// Run executes cmd, capturing stdout and stderr, and kills it at its deadline.
func (r *LocalRunner) Run(ctx context.Context, c Command) Result {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = r.DefaultTimeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	// Children that keep the output pipes open must not hold Wait past the deadline.
	cmd.WaitDelay = 100 * time.Millisecond

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return res
	}

	res.Err = err
	res.ExitCode = -1
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		res.TimedOut = true
		res.Err = fmt.Errorf("%s: timed out after %s", c.Name, timeout)
	case errors.Is(err, exec.ErrNotFound):
		res.NotFound = true
		res.Err = fmt.Errorf("command not found: %s", c.Name)
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	}
	return res
}

// LookPath implements Runner.
func (r *LocalRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
