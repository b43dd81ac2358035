package orchestration

import (
	"time"

	"github.com/basilica-ai/minercheck/internal/checks"
)

// Run is the result of one orchestrator invocation.
type Run struct {
	ID        string        `json:"id" yaml:"id"`
	StartedAt time.Time     `json:"startedAt" yaml:"startedAt"`
	Duration  time.Duration `json:"durationNs" yaml:"duration"`
	// Stages lists activated stages only, in run order.
	Stages []StageResult `json:"stages" yaml:"stages"`
}

// StageResult holds the outcomes of one activated stage.
type StageResult struct {
	Name     string           `json:"name" yaml:"name"`
	Outcomes []checks.Outcome `json:"outcomes" yaml:"outcomes"`
	Duration time.Duration    `json:"durationNs" yaml:"duration"`
}

// Outcomes returns every outcome of the run in stage, probe and chain order.
func (r *Run) Outcomes() []checks.Outcome {
	var out []checks.Outcome
	for _, st := range r.Stages {
		out = append(out, st.Outcomes...)
	}
	return out
}

// Summary derives the run summary from the full outcome list.
func (r *Run) Summary() checks.Summary {
	return checks.Summarize(r.Outcomes())
}

// ProgressListener receives progress updates.
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventStageStart    EventType = "stage_start"
	EventProbeComplete EventType = "probe_complete"
	EventStageComplete EventType = "stage_complete"
	EventRunComplete   EventType = "run_complete"
)

// ProgressEvent represents a progress update. Events are delivered from the
// goroutine that called Run, in outcome order.
type ProgressEvent struct {
	EventType   EventType
	Stage       string
	Probe       string
	StageNum    int
	TotalStages int
	Outcomes    []checks.Outcome
	Duration    time.Duration
}
