package probes

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/basilica-ai/minercheck/internal/checks"
	"github.com/basilica-ai/minercheck/internal/execution"
	"github.com/basilica-ai/minercheck/internal/remote"
)

// ServiceProbe checks the systemd unit, then the miner's health endpoint.
// The health outcome is omitted when the unit is not active.
func ServiceProbe(service, healthURL string, r execution.Runner, h remote.HTTPProber) checks.Prober {
	const serviceName = "Miner Service"
	const healthName = "Health Endpoint"

	return checks.NewProbe(serviceName, CommandTimeout+remote.DefaultHTTPTimeout+probeSlack, func(ctx context.Context) ([]checks.Outcome, error) {
		res := r.Run(ctx, execution.Command{Name: "systemctl", Args: []string{"is-active", service}, Timeout: CommandTimeout})
		state := strings.TrimSpace(res.Stdout)
		if state == "" {
			state = "unknown"
		}
		if state != "active" {
			hint := "Start with: sudo systemctl start " + service
			kind := checks.KindCheckFailed
			if res.TimedOut || res.NotFound {
				kind, hint = res.Kind(), withCause(hint, res.Detail())
			}
			return []checks.Outcome{checks.Fail(serviceName, kind, "Service status: "+state, hint)}, nil
		}
		outcomes := []checks.Outcome{checks.Pass(serviceName, "Service status: active")}

		status, err := h.Get(ctx, healthURL)
		switch {
		case err != nil:
			outcomes = append(outcomes, checks.Fail(healthName, remote.Classify(err), "Health check failed", err.Error()))
		case status != http.StatusOK:
			outcomes = append(outcomes, checks.Fail(healthName, checks.KindCheckFailed, "Health check failed",
				fmt.Sprintf("HTTP %d from %s", status, healthURL)))
		default:
			outcomes = append(outcomes, checks.Pass(healthName, "HTTP 200: Miner responding"))
		}
		return outcomes, nil
	})
}
