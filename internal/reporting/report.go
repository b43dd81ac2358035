// Package reporting renders a finished health check run as text, JSON, YAML
// or JUnit XML.
package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/basilica-ai/minercheck/internal/checks"
	"github.com/basilica-ai/minercheck/internal/minerconfig"
	"github.com/basilica-ai/minercheck/internal/orchestration"
)

// Format selects a renderer.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatJUnit Format = "junit"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML, FormatJUnit:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, yaml or junit)", s)
	}
}

// ConfigSource describes where the configuration came from.
type ConfigSource struct {
	Path     string             `json:"path" yaml:"path"`
	Status   minerconfig.Status `json:"status" yaml:"status"`
	Error    string             `json:"error,omitempty" yaml:"error,omitempty"`
	Warnings []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// SourceFromLoad builds a ConfigSource from a load result plus any extra
// warnings, such as schema violations.
func SourceFromLoad(l *minerconfig.Loaded, extra ...string) ConfigSource {
	src := ConfigSource{Path: l.Path, Status: l.Status}
	if l.Err != nil {
		src.Error = l.Err.Error()
	}
	src.Warnings = append(append(src.Warnings, l.Warnings...), extra...)
	return src
}

// Report is the machine-readable form of a run.
type Report struct {
	RunID      string                      `json:"runId" yaml:"runId"`
	StartedAt  time.Time                   `json:"startedAt" yaml:"startedAt"`
	DurationMs int64                       `json:"durationMs" yaml:"durationMs"`
	Config     ConfigSource                `json:"config" yaml:"config"`
	Stages     []orchestration.StageResult `json:"stages" yaml:"stages"`
	Summary    checks.Summary              `json:"summary" yaml:"summary"`
	Healthy    bool                        `json:"healthy" yaml:"healthy"`
}

// NewReport assembles a Report from a finished run.
func NewReport(run *orchestration.Run, src ConfigSource) *Report {
	stages := run.Stages
	if stages == nil {
		stages = []orchestration.StageResult{}
	}
	summary := run.Summary()
	return &Report{
		RunID:      run.ID,
		StartedAt:  run.StartedAt,
		DurationMs: run.Duration.Milliseconds(),
		Config:     src,
		Stages:     stages,
		Summary:    summary,
		Healthy:    summary.OK(),
	}
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteYAML writes r as YAML.
func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

// Write renders r in the given machine-readable format.
func Write(w io.Writer, f Format, r *Report) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	case FormatJUnit:
		return WriteJUnit(w, r)
	default:
		return fmt.Errorf("format %q is not machine-readable", f)
	}
}
