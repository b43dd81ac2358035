// Package probes holds the concrete miner health probes and the fixed stage
// list the orchestrator runs.
package probes

import (
	"io/fs"
	"os"
	"time"

	"github.com/basilica-ai/minercheck/internal/checks"
	"github.com/basilica-ai/minercheck/internal/execution"
	"github.com/basilica-ai/minercheck/internal/minerconfig"
	"github.com/basilica-ai/minercheck/internal/remote"
)

//go:generate go tool mockgen -destination=mock_runner_test.go -package=probes github.com/basilica-ai/minercheck/internal/execution Runner
//go:generate go tool mockgen -destination=mock_remote_test.go -package=probes github.com/basilica-ai/minercheck/internal/remote SSHRunner,HTTPProber

// Stage names, in run order.
const (
	StageSystem  = "System Requirements"
	StageSSH     = "SSH Configuration"
	StageNodes   = "GPU Node Connectivity"
	StageWallet  = "Bittensor Wallet"
	StageService = "Miner Service"
)

const (
	DefaultServiceName = "basilica-miner"
	DefaultHealthURL   = "http://localhost:8080/health"

	// CommandTimeout bounds each local command.
	CommandTimeout  = 10 * time.Second
	SSHEchoTimeout  = 15 * time.Second
	GPUQueryTimeout = 10 * time.Second
	BtcliTimeout    = 30 * time.Second

	// probeSlack is added to a probe's summed call timeouts to form its own bound.
	probeSlack = 5 * time.Second
)

// Deps are the capabilities probes use. Zero fields are filled by DefaultDeps.
type Deps struct {
	Runner execution.Runner
	// SSH returns a runner authenticating with the given private key.
	SSH  func(keyPath string) remote.SSHRunner
	HTTP remote.HTTPProber
	Stat func(name string) (fs.FileInfo, error)
	// Home is the directory holding .bittensor/wallets.
	Home string

	ServiceName string
	HealthURL   string
}

// DefaultDeps returns capabilities backed by the local system.
func DefaultDeps() Deps {
	return Deps{}.withDefaults()
}

func (d Deps) withDefaults() Deps {
	if d.Runner == nil {
		d.Runner = execution.NewLocalRunner()
	}
	if d.SSH == nil {
		d.SSH = func(keyPath string) remote.SSHRunner { return remote.NewSSHClient(keyPath) }
	}
	if d.HTTP == nil {
		d.HTTP = remote.NewHTTPClient(remote.DefaultHTTPTimeout)
	}
	if d.Stat == nil {
		d.Stat = os.Stat
	}
	if d.Home == "" {
		d.Home = minerconfig.ExpandHome("~")
	}
	if d.ServiceName == "" {
		d.ServiceName = DefaultServiceName
	}
	if d.HealthURL == "" {
		d.HealthURL = DefaultHealthURL
	}
	return d
}

// Stages returns the fixed, ordered stage list. System, SSH and service
// stages always run; the node stage needs node_management.nodes and the
// wallet stage needs a bittensor section.
func Stages(d Deps) []checks.Stage[*minerconfig.Config] {
	d = d.withDefaults()

	return []checks.Stage[*minerconfig.Config]{
		{
			Name: StageSystem,
			Probes: checks.Static[*minerconfig.Config](
				OSProbe(d.Runner),
				CPUProbe(d.Runner),
				RAMProbe(d.Runner),
			),
		},
		{
			Name: StageSSH,
			Probes: func(cfg *minerconfig.Config) []checks.Prober {
				return []checks.Prober{KeyPairProbe(keyPath(cfg), d.Stat)}
			},
		},
		{
			Name: StageNodes,
			Active: func(cfg *minerconfig.Config) bool {
				return cfg != nil && cfg.NodeManagement != nil
			},
			Probes: func(cfg *minerconfig.Config) []checks.Prober {
				ssh := d.SSH(keyPath(cfg))
				probes := make([]checks.Prober, 0, len(cfg.NodeManagement.Nodes))
				for _, n := range cfg.NodeManagement.Nodes {
					probes = append(probes, NodeProbe(n, ssh))
				}
				return probes
			},
		},
		{
			Name: StageWallet,
			Active: func(cfg *minerconfig.Config) bool {
				return cfg != nil && cfg.Bittensor != nil
			},
			Probes: func(cfg *minerconfig.Config) []checks.Prober {
				return []checks.Prober{WalletProbe(*cfg.Bittensor, d.Home, d.Runner, d.Stat)}
			},
		},
		{
			Name:   StageService,
			Probes: checks.Static[*minerconfig.Config](ServiceProbe(d.ServiceName, d.HealthURL, d.Runner, d.HTTP)),
		},
	}
}

func keyPath(cfg *minerconfig.Config) string {
	if cfg == nil || cfg.SSHSession.KeyPath == "" {
		return minerconfig.New().SSHSession.KeyPath
	}
	return cfg.SSHSession.KeyPath
}

// withCause appends cause to a remediation hint.
func withCause(hint, cause string) string {
	switch {
	case cause == "":
		return hint
	case hint == "":
		return cause
	default:
		return hint + " (" + cause + ")"
	}
}
