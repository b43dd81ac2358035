package probes

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/basilica-ai/minercheck/internal/checks"
	"github.com/basilica-ai/minercheck/internal/execution"
)

const (
	MinCPUCores = 8
	MinRAMGB    = 16
)

// OSProbe checks that the host runs Linux.
func OSProbe(r execution.Runner) checks.Prober {
	const name = "Operating System"
	const hint = "Basilica requires Linux (Ubuntu 22.04+ recommended)"

	return checks.NewProbe(name, CommandTimeout+probeSlack, func(ctx context.Context) ([]checks.Outcome, error) {
		res := r.Run(ctx, execution.Command{Name: "uname", Args: []string{"-s"}, Timeout: CommandTimeout})
		if !res.OK() {
			return []checks.Outcome{checks.Fail(name, res.Kind(), "Running on unknown OS", withCause(hint, res.Detail()))}, nil
		}
		osName := strings.TrimSpace(res.Stdout)
		return []checks.Outcome{checks.Check(name, strings.Contains(osName, "Linux"), "Running on "+osName, hint)}, nil
	})
}

// CPUProbe checks the number of online processors.
func CPUProbe(r execution.Runner) checks.Prober {
	const name = "CPU Cores"
	hint := fmt.Sprintf("Recommended: %d+ cores", MinCPUCores)

	return checks.NewProbe(name, CommandTimeout+probeSlack, func(ctx context.Context) ([]checks.Outcome, error) {
		res := r.Run(ctx, execution.Command{Name: "nproc", Timeout: CommandTimeout})
		if !res.OK() {
			return []checks.Outcome{checks.Fail(name, res.Kind(), "Could not determine CPU cores", withCause(hint, res.Detail()))}, nil
		}
		cores, err := strconv.Atoi(strings.TrimSpace(res.Stdout))
		if err != nil {
			return []checks.Outcome{checks.Fail(name, checks.KindCheckFailed, "Could not determine CPU cores", withCause(hint, fmt.Sprintf("unexpected nproc output %q", strings.TrimSpace(res.Stdout))))}, nil
		}
		return []checks.Outcome{checks.Check(name, cores >= MinCPUCores, fmt.Sprintf("%d cores detected", cores), hint)}, nil
	})
}

// RAMProbe checks total memory as reported by free -g.
func RAMProbe(r execution.Runner) checks.Prober {
	const name = "RAM"
	hint := fmt.Sprintf("Recommended: %dGB+", MinRAMGB)

	return checks.NewProbe(name, CommandTimeout+probeSlack, func(ctx context.Context) ([]checks.Outcome, error) {
		res := r.Run(ctx, execution.Command{Name: "free", Args: []string{"-g"}, Timeout: CommandTimeout})
		if !res.OK() {
			return []checks.Outcome{checks.Fail(name, res.Kind(), "Could not determine total memory", withCause(hint, res.Detail()))}, nil
		}
		gb, err := parseFreeTotal(res.Stdout)
		if err != nil {
			return []checks.Outcome{checks.Fail(name, checks.KindCheckFailed, "Could not determine total memory", withCause(hint, err.Error()))}, nil
		}
		return []checks.Outcome{checks.Check(name, gb >= MinRAMGB, fmt.Sprintf("%dGB total memory", gb), hint)}, nil
	})
}

// parseFreeTotal returns the "total" column of the Mem: row.
func parseFreeTotal(out string) (int, error) {
	for line := range strings.SplitSeq(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "Mem:" {
			continue
		}
		gb, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("unexpected free output: %q", line)
		}
		return gb, nil
	}
	return 0, fmt.Errorf("no Mem: line in free output")
}
