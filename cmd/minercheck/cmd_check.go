package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/basilica-ai/minercheck/internal/minerconfig"
	"github.com/basilica-ai/minercheck/internal/orchestration"
	"github.com/basilica-ai/minercheck/internal/probes"
	"github.com/basilica-ai/minercheck/internal/reporting"
	"github.com/basilica-ai/minercheck/internal/validation"
)

type checkOptions struct {
	configPath string
	format     string
	color      string
	workers    int
	service    string
	healthURL  string
}

func newCheckCommand(deps probes.Deps) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every miner health check and report the result",
		Long: `Run the miner health checks in a fixed order:

  1. System requirements - Linux, CPU cores, memory
  2. SSH configuration - node key pair and its permissions
  3. GPU node connectivity - SSH and nvidia-smi per node (needs node_management.nodes)
  4. Bittensor wallet - btcli, hotkey file, subnet access (needs a bittensor section)
  5. Miner service - systemd unit and health endpoint

The configuration is read from --config, then $MINERCHECK_CONFIG, then
/opt/basilica/config/miner.toml. A missing or unreadable file is reported
and the checks run with defaults.

Exit status is 0 when every check passed and 1 otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, deps)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to miner.toml (or .yaml)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text | json | yaml | junit")
	cmd.Flags().StringVar(&opts.color, "color", "auto", "Colour text output: auto | always | never")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "Run up to N checks of a stage concurrently")
	cmd.Flags().StringVar(&opts.service, "service", probes.DefaultServiceName, "systemd unit of the miner")
	cmd.Flags().StringVar(&opts.healthURL, "health-url", probes.DefaultHealthURL, "Miner health endpoint")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions, deps probes.Deps) error {
	format, err := reporting.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	useColor, err := colorEnabled(opts.color, out)
	if err != nil {
		return err
	}
	if opts.workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", opts.workers)
	}

	loaded, src := loadConfig(opts.configPath)

	deps.ServiceName = opts.service
	deps.HealthURL = opts.healthURL
	orch := orchestration.New(probes.Stages(deps), orchestration.WithWorkers(opts.workers))

	var run *orchestration.Run
	if format == reporting.FormatText {
		tr := reporting.NewTextReporter(out, useColor)
		if isTerminal(out) {
			tr.EnableSpinner()
		}
		tr.Banner(src)
		orch.OnProgress(tr.Listener())
		run = orch.Run(cmd.Context(), loaded.Config)
		tr.Summary(run.Summary())
	} else {
		run = orch.Run(cmd.Context(), loaded.Config)
		if err := reporting.Write(out, format, reporting.NewReport(run, src)); err != nil {
			return err
		}
	}

	summary := run.Summary()
	slog.Debug("Run finished", "run", run.ID, "passed", summary.Passed, "total", summary.Total, "duration", run.Duration)
	if !summary.OK() {
		return &HealthCheckFailedError{Passed: summary.Passed, Total: summary.Total, Percentage: summary.Percentage}
	}
	return nil
}

// loadConfig resolves, loads and schema-checks the configuration. Problems
// are logged and returned in the source description; they never stop a run.
func loadConfig(flagPath string) (*minerconfig.Loaded, reporting.ConfigSource) {
	path := minerconfig.ResolvePath(flagPath)
	loaded := minerconfig.Load(path)
	switch loaded.Status {
	case minerconfig.StatusMissing:
		slog.Warn("Configuration file not found, using defaults", "path", path)
	case minerconfig.StatusMalformed:
		slog.Warn("Configuration file unusable, using defaults", "path", path, "error", loaded.Err)
	}

	schemaWarnings := validation.ValidateConfig(loaded.Raw)
	for _, w := range append(append([]string{}, loaded.Warnings...), schemaWarnings...) {
		slog.Debug("Configuration warning", "path", path, "warning", w)
	}
	return loaded, reporting.SourceFromLoad(loaded, schemaWarnings...)
}

// colorEnabled resolves a --color value. auto colours only a terminal and
// honours NO_COLOR.
func colorEnabled(mode string, out io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return isTerminal(out), nil
	default:
		return false, fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
