package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/basilica-ai/minercheck/internal/checks"
	"github.com/basilica-ai/minercheck/internal/minerconfig"
	"github.com/basilica-ai/minercheck/internal/orchestration"
	"github.com/basilica-ai/minercheck/internal/spinner"
)

// HeaderWidth is the width of the "=" rules around section headers.
const HeaderWidth = 60

// TextReporter prints the human-readable report.
type TextReporter struct {
	w io.Writer

	header *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color

	spin     bool
	stopSpin func()
}

// NewTextReporter writes to w, with ANSI colour only when useColor is set.
func NewTextReporter(w io.Writer, useColor bool) *TextReporter {
	t := &TextReporter{
		w:      w,
		header: color.New(color.Bold, color.FgHiBlue),
		green:  color.New(color.FgHiGreen),
		yellow: color.New(color.FgHiYellow),
		red:    color.New(color.FgHiRed),
	}
	for _, c := range []*color.Color{t.header, t.green, t.yellow, t.red} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return t
}

// EnableSpinner animates a progress line while a stage's checks run.
// Only useful when the writer is a terminal.
func (t *TextReporter) EnableSpinner() {
	t.spin = true
}

func (t *TextReporter) startSpinner(stage string) {
	if t.spin && t.stopSpin == nil {
		t.stopSpin = spinner.Start(t.w, "Running "+stage+" checks")
	}
}

func (t *TextReporter) stopSpinner() {
	if t.stopSpin != nil {
		t.stopSpin()
		t.stopSpin = nil
	}
}

// Header prints a section title centred between two rules.
func (t *TextReporter) Header(title string) {
	rule := strings.Repeat("=", HeaderWidth)
	_, _ = fmt.Fprintln(t.w)
	_, _ = t.header.Fprintln(t.w, rule)
	_, _ = t.header.Fprintln(t.w, center(title, HeaderWidth))
	_, _ = t.header.Fprintln(t.w, rule)
	_, _ = fmt.Fprintln(t.w)
}

// Banner prints the report title and where the configuration came from.
func (t *TextReporter) Banner(src ConfigSource) {
	t.Header("BASILICA MINER HEALTH CHECK")

	switch src.Status {
	case minerconfig.StatusLoaded:
		_, _ = t.green.Fprintf(t.w, "✓ Loaded configuration from %s\n", src.Path)
	case minerconfig.StatusMissing:
		_, _ = t.red.Fprintf(t.w, "✗ Configuration file not found: %s\n", src.Path)
		_, _ = t.yellow.Fprintln(t.w, "Using default values for checks")
	default:
		_, _ = t.red.Fprintf(t.w, "✗ Failed to parse config: %s\n", src.Error)
		_, _ = t.yellow.Fprintln(t.w, "Using default values for checks")
	}
	for _, w := range src.Warnings {
		_, _ = t.yellow.Fprintf(t.w, "! %s\n", w)
	}
	_, _ = fmt.Fprintln(t.w)
}

// Outcome prints one outcome with its message and optional detail.
func (t *TextReporter) Outcome(o checks.Outcome) {
	if o.Passed {
		_, _ = t.green.Fprintf(t.w, "✓ %s: PASS\n", o.Name)
	} else {
		_, _ = t.red.Fprintf(t.w, "✗ %s: FAIL\n", o.Name)
	}
	_, _ = fmt.Fprintf(t.w, "  %s\n", o.Message)
	if o.Detail != "" {
		_, _ = t.yellow.Fprintf(t.w, "  → %s\n", o.Detail)
	}
}

// Summary prints the pass count, percentage and the failed checks.
func (t *TextReporter) Summary(s checks.Summary) {
	t.Header("SUMMARY")

	c := t.red
	switch {
	case s.OK():
		c = t.green
	case s.Percentage >= 70:
		c = t.yellow
	}
	_, _ = c.Fprintf(t.w, "%d/%d checks passed (%.0f%%)\n\n", s.Passed, s.Total, s.Percentage)

	if s.OK() {
		return
	}
	_, _ = t.red.Fprintln(t.w, "Failed checks:")
	for _, o := range s.Failed {
		_, _ = fmt.Fprintf(t.w, "  • %s\n", o.Name)
		if o.Detail != "" {
			_, _ = fmt.Fprintf(t.w, "    %s\n", o.Detail)
		}
	}
	_, _ = fmt.Fprintln(t.w)
}

// Listener streams stage headers and outcomes while the run is in progress.
func (t *TextReporter) Listener() orchestration.ProgressListener {
	return func(ev orchestration.ProgressEvent) {
		switch ev.EventType {
		case orchestration.EventStageStart:
			t.Header(strings.ToUpper(ev.Stage))
			t.startSpinner(ev.Stage)
		case orchestration.EventProbeComplete:
			t.stopSpinner()
			for _, o := range ev.Outcomes {
				t.Outcome(o)
			}
			t.startSpinner(ev.Stage)
		case orchestration.EventStageComplete, orchestration.EventRunComplete:
			t.stopSpinner()
		}
	}
}

// Render prints a complete report after the fact.
func (t *TextReporter) Render(r *Report) {
	t.Banner(r.Config)
	for _, st := range r.Stages {
		t.Header(strings.ToUpper(st.Name))
		for _, o := range st.Outcomes {
			t.Outcome(o)
		}
	}
	t.Summary(r.Summary)
}

// center pads s on both sides to width display columns.
func center(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	left := (width - sw) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-sw-left)
}
