package probes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/basilica-ai/minercheck/internal/checks"
	"github.com/basilica-ai/minercheck/internal/minerconfig"
	"github.com/basilica-ai/minercheck/internal/remote"
)

// GPUQueryCommand lists GPU model and driver version, one line per device.
const GPUQueryCommand = "nvidia-smi --query-gpu=name,driver_version --format=csv,noheader"

// NodeProbe checks that node accepts the miner key, then queries its GPUs.
// The GPU outcome is omitted when the SSH outcome failed. Each step opens
// its own connection.
func NodeProbe(node minerconfig.Node, ssh remote.SSHRunner) checks.Prober {
	ep := remote.Endpoint{Host: node.Host, Port: node.Port, User: node.Username}
	sshName := fmt.Sprintf("Node SSH: %s:%d", node.Host, node.Port)
	gpuName := "Node GPU: " + node.Host

	return checks.NewProbe(sshName, SSHEchoTimeout+GPUQueryTimeout+probeSlack, func(ctx context.Context) ([]checks.Outcome, error) {
		echoCtx, cancel := context.WithTimeout(ctx, SSHEchoTimeout)
		out, err := ssh.Run(echoCtx, ep, "echo OK")
		cancel()
		if err != nil {
			return []checks.Outcome{checks.Fail(sshName, remote.Classify(err), "Connection failed", errorDetail(err))}, nil
		}
		if !strings.Contains(out, "OK") {
			return []checks.Outcome{checks.Fail(sshName, checks.KindCheckFailed, "Connection failed",
				fmt.Sprintf("unexpected reply to echo: %q", strings.TrimSpace(out)))}, nil
		}
		outcomes := []checks.Outcome{checks.Pass(sshName, "Connection successful")}

		gpuCtx, cancel := context.WithTimeout(ctx, GPUQueryTimeout)
		out, err = ssh.Run(gpuCtx, ep, GPUQueryCommand)
		cancel()
		gpus := gpuList(out)
		switch {
		case err != nil:
			outcomes = append(outcomes, checks.Fail(gpuName, remote.Classify(err), "nvidia-smi failed",
				withCause("Ensure NVIDIA drivers are installed on GPU node", errorDetail(err))))
		case gpus == "":
			outcomes = append(outcomes, checks.Fail(gpuName, checks.KindCheckFailed, "nvidia-smi failed",
				"Ensure NVIDIA drivers are installed on GPU node"))
		default:
			outcomes = append(outcomes, checks.Pass(gpuName, "GPU detected: "+gpus))
		}
		return outcomes, nil
	})
}

// gpuList joins the non-empty lines of nvidia-smi output.
func gpuList(out string) string {
	var lines []string
	for line := range strings.SplitSeq(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "; ")
}

// errorDetail prefers remote stderr over the error chain.
func errorDetail(err error) string {
	var cmdErr *remote.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
		return cmdErr.Stderr
	}
	return err.Error()
}
