// Package orchestration sequences check stages, isolates probe failures and
// collects every outcome of a run into one ordered list.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/basilica-ai/minercheck/internal/checks"
	"github.com/basilica-ai/minercheck/internal/utils"
)

const (
	// DefaultProbeTimeout bounds probes that do not declare their own timeout.
	DefaultProbeTimeout = 30 * time.Second
	// DefaultGracePeriod is how long a probe may overrun its deadline before it is abandoned.
	DefaultGracePeriod = 250 * time.Millisecond
)

// Orchestrator runs a fixed sequence of stages against one configuration value.
type Orchestrator[C any] struct {
	stages []checks.Stage[C]
	opts   options

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

type options struct {
	probeTimeout time.Duration
	grace        time.Duration
	workers      int
}

// Option configures an Orchestrator.
type Option func(*options)

// WithProbeTimeout sets the bound for probes without their own timeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.probeTimeout = d
		}
	}
}

// WithGracePeriod sets how long a probe may overrun its deadline.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.grace = d
		}
	}
}

// WithWorkers runs up to n probes of the same stage concurrently.
// Outcome order is unaffected. n <= 1 keeps the run sequential.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// New creates an orchestrator for stages, which run in the order given.
func New[C any](stages []checks.Stage[C], opts ...Option) *Orchestrator[C] {
	o := &Orchestrator[C]{
		stages: stages,
		opts: options{
			probeTimeout: DefaultProbeTimeout,
			grace:        DefaultGracePeriod,
			workers:      1,
		},
	}
	for _, opt := range opts {
		opt(&o.opts)
	}
	return o
}

// OnProgress registers a progress listener.
func (o *Orchestrator[C]) OnProgress(listener ProgressListener) {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	o.listeners = append(o.listeners, listener)
}

func (o *Orchestrator[C]) notifyProgress(event ProgressEvent) {
	o.progressMu.Lock()
	listeners := make([]ProgressListener, len(o.listeners))
	copy(listeners, o.listeners)
	o.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run evaluates every stage against cfg and returns the collected outcomes.
// It never fails: probe errors, panics and timeouts become failed outcomes.
func (o *Orchestrator[C]) Run(ctx context.Context, cfg C) *Run {
	run := &Run{
		ID:        ulid.Make().String(),
		StartedAt: time.Now(),
	}

	for i, st := range o.stages {
		if !o.active(st, cfg) {
			slog.Debug("Stage not activated", "stage", st.Name)
			continue
		}

		o.notifyProgress(ProgressEvent{
			EventType:   EventStageStart,
			Stage:       st.Name,
			StageNum:    i + 1,
			TotalStages: len(o.stages),
		})

		stageStart := time.Now()
		result := StageResult{Name: st.Name}
		o.runStage(ctx, st, cfg, func(done probeResult) {
			for _, out := range done.outcomes {
				utils.OutcomeToSlog(st.Name, out)
			}
			result.Outcomes = append(result.Outcomes, done.outcomes...)
			o.notifyProgress(ProgressEvent{
				EventType:   EventProbeComplete,
				Stage:       st.Name,
				Probe:       done.name,
				StageNum:    i + 1,
				TotalStages: len(o.stages),
				Outcomes:    done.outcomes,
				Duration:    done.duration,
			})
		})
		result.Duration = time.Since(stageStart)
		run.Stages = append(run.Stages, result)

		o.notifyProgress(ProgressEvent{
			EventType:   EventStageComplete,
			Stage:       st.Name,
			StageNum:    i + 1,
			TotalStages: len(o.stages),
			Outcomes:    result.Outcomes,
			Duration:    result.Duration,
		})
	}

	run.Duration = time.Since(run.StartedAt)
	o.notifyProgress(ProgressEvent{
		EventType:   EventRunComplete,
		TotalStages: len(o.stages),
		Outcomes:    run.Outcomes(),
		Duration:    run.Duration,
	})
	return run
}

// active evaluates the stage predicate. A panicking predicate deactivates the stage.
func (o *Orchestrator[C]) active(st checks.Stage[C], cfg C) (ok bool) {
	if st.Active == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Stage activation check panicked", "stage", st.Name, "panic", r)
			ok = false
		}
	}()
	return st.Active(cfg)
}

type probeResult struct {
	name     string
	outcomes []checks.Outcome
	duration time.Duration
}

// runStage runs every probe of st and hands each result to collect in
// declaration order.
func (o *Orchestrator[C]) runStage(ctx context.Context, st checks.Stage[C], cfg C, collect func(probeResult)) {
	probes, err := buildProbes(st, cfg)
	if err != nil {
		collect(probeResult{
			name:     st.Name,
			outcomes: []checks.Outcome{checks.Fail(st.Name, checks.KindInternalFault, "Stage could not be prepared", err.Error())},
		})
		return
	}

	if o.opts.workers <= 1 || len(probes) < 2 {
		for _, p := range probes {
			collect(o.runProbe(ctx, p))
		}
		return
	}

	results := make([]probeResult, len(probes))

	// Each goroutine owns one slot, so the slice needs no lock and keeps declaration order.
	g := new(errgroup.Group)
	g.SetLimit(o.opts.workers)
	for i, p := range probes {
		g.Go(func() error {
			results[i] = o.runProbe(ctx, p)
			return nil
		})
	}
	_ = g.Wait()
	for _, r := range results {
		collect(r)
	}
}

func buildProbes[C any](st checks.Stage[C], cfg C) (probes []checks.Prober, err error) {
	if st.Probes == nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("building probes for %s: %v", st.Name, r)
		}
	}()
	return st.Probes(cfg), nil
}

// runProbe executes p under its deadline and converts every failure mode into outcomes.
// A probe that ignores its context is abandoned once the deadline plus grace has passed.
func (o *Orchestrator[C]) runProbe(ctx context.Context, p checks.Prober) probeResult {
	name := p.Name()
	timeout := o.opts.probeTimeout
	if tp, ok := p.(checks.TimeoutProber); ok && tp.Timeout() > 0 {
		timeout = tp.Timeout()
	}

	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		outcomes []checks.Outcome
		err      error
	}
	done := make(chan result, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Debug("Probe panicked", "probe", name, "panic", r, "stack", string(debug.Stack()))
				done <- result{err: &PanicError{Value: r}}
			}
		}()
		out, err := p.Probe(pctx)
		done <- result{outcomes: out, err: err}
	}()

	timer := time.NewTimer(timeout + o.opts.grace)
	defer timer.Stop()

	var res result
	select {
	case res = <-done:
	case <-timer.C:
		slog.Debug("Probe abandoned after deadline", "probe", name, "timeout", timeout)
		res = result{err: context.DeadlineExceeded}
	}

	elapsed := time.Since(start)
	slog.Debug("Probe finished", "probe", name, "duration", elapsed, "outcomes", len(res.outcomes), "err", res.err)

	outcomes := make([]checks.Outcome, 0, len(res.outcomes)+1)
	outcomes = append(outcomes, res.outcomes...)
	if res.err != nil {
		outcomes = append(outcomes, faultOutcome(name, timeout, res.err))
	}
	for i := range outcomes {
		if outcomes[i].Duration == 0 {
			outcomes[i].Duration = elapsed
		}
	}
	return probeResult{name: name, outcomes: outcomes, duration: elapsed}
}

func faultOutcome(name string, timeout time.Duration, err error) checks.Outcome {
	var pe *PanicError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return checks.Fail(name, checks.KindTimeout, "Check timed out", fmt.Sprintf("no result within %s", timeout))
	case errors.Is(err, context.Canceled):
		return checks.Fail(name, checks.KindTimeout, "Check cancelled", "the run was interrupted before this check finished")
	case errors.As(err, &pe):
		return checks.Fail(name, checks.KindInternalFault, "Check crashed", pe.Error())
	default:
		return checks.Fail(name, checks.KindInternalFault, "Check could not run", err.Error())
	}
}

// PanicError wraps a value recovered from a panicking probe.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
