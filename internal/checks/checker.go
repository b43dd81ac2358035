// Package checks provides the Prober interface, the Outcome it produces, and the
// Stage and Summary types used to group probes and aggregate their results.
package checks

import (
	"context"
	"time"
)

// Outcome holds the result of a single diagnostic fact.
type Outcome struct {
	// Name is the display name of the check, e.g. "Node SSH: 10.0.0.5:22".
	Name string `json:"name" yaml:"name"`
	// Passed indicates whether the check met its acceptance criteria.
	Passed bool `json:"passed" yaml:"passed"`
	// Message is a human-readable one-line result. Always set.
	Message string `json:"message" yaml:"message"`
	// Detail is an optional remediation hint or error context.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	// Kind classifies a failure. Empty when Passed is true.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`
	// Duration is how long the producing probe ran.
	Duration time.Duration `json:"durationNs,omitempty" yaml:"duration,omitempty"`
}

// Pass returns a passing outcome.
func Pass(name, message string) Outcome {
	return Outcome{Name: name, Passed: true, Message: message}
}

// Fail returns a failed outcome of the given kind.
func Fail(name string, kind Kind, message, detail string) Outcome {
	if kind == "" {
		kind = KindCheckFailed
	}
	return Outcome{Name: name, Passed: false, Message: message, Detail: detail, Kind: kind}
}

// Check returns a passing outcome when ok is true, otherwise a check_failed
// outcome carrying the remediation hint.
func Check(name string, ok bool, message, hint string) Outcome {
	if ok {
		return Pass(name, message)
	}
	return Fail(name, KindCheckFailed, message, hint)
}

// Prober interrogates one fact about the environment.
//
// Probe returns the outcomes in chain order. Later links of a chain are omitted,
// not failed, when an earlier link failed. A returned error is treated as an
// internal fault of the probe and turned into a single failed outcome by the caller.
type Prober interface {
	Name() string
	Probe(ctx context.Context) ([]Outcome, error)
}

// TimeoutProber is implemented by probes that declare their own time bound.
type TimeoutProber interface {
	Timeout() time.Duration
}

// ProbeFunc is the function form of Prober.Probe.
type ProbeFunc func(ctx context.Context) ([]Outcome, error)

type funcProbe struct {
	name    string
	timeout time.Duration
	fn      ProbeFunc
}

var (
	_ Prober        = (*funcProbe)(nil)
	_ TimeoutProber = (*funcProbe)(nil)
)

// NewProbe adapts fn into a Prober. A zero timeout leaves the bound to the caller.
func NewProbe(name string, timeout time.Duration, fn ProbeFunc) Prober {
	return &funcProbe{name: name, timeout: timeout, fn: fn}
}

func (p *funcProbe) Name() string                                 { return p.name }
func (p *funcProbe) Timeout() time.Duration                       { return p.timeout }
func (p *funcProbe) Probe(ctx context.Context) ([]Outcome, error) { return p.fn(ctx) }
