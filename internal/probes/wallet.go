package probes

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/basilica-ai/minercheck/internal/checks"
	"github.com/basilica-ai/minercheck/internal/execution"
	"github.com/basilica-ai/minercheck/internal/minerconfig"
)

// WalletPath is where btcli keeps a hotkey file.
func WalletPath(home, wallet, hotkey string) string {
	return filepath.Join(home, ".bittensor", "wallets", wallet, "hotkeys", hotkey)
}

// SubnetListCommand builds the btcli query used to confirm subnet access.
func SubnetListCommand(netuid int, network string) execution.Command {
	args := []string{"subnet", "list", "--netuid", strconv.Itoa(netuid)}
	if network == "test" {
		args = append(args, "--subtensor.network", "test")
	}
	return execution.Command{Name: "btcli", Args: args, Timeout: BtcliTimeout}
}

// WalletProbe chains btcli presence, the hotkey file and a subnet query.
// Each link is omitted when the previous one failed.
func WalletProbe(bt minerconfig.Bittensor, home string, r execution.Runner, stat func(string) (fs.FileInfo, error)) checks.Prober {
	const btcliName = "btcli Installed"
	const walletName = "Wallet Files"
	subnetName := fmt.Sprintf("Subnet %d Access", bt.Netuid)

	return checks.NewProbe("Bittensor Wallet", BtcliTimeout+probeSlack, func(ctx context.Context) ([]checks.Outcome, error) {
		if _, err := r.LookPath("btcli"); err != nil {
			return []checks.Outcome{checks.Fail(btcliName, checks.KindEnvironmentMissing, "btcli not found", "Install with: pip install bittensor")}, nil
		}
		outcomes := []checks.Outcome{checks.Pass(btcliName, "Bittensor CLI found")}

		hotkey := WalletPath(home, bt.WalletName, bt.HotkeyName)
		if _, err := stat(hotkey); err != nil {
			return append(outcomes, checks.Fail(walletName, checks.KindEnvironmentMissing, "Wallet not found",
				fmt.Sprintf("Create with: btcli wallet new_hotkey --wallet.name %s --wallet.hotkey %s", bt.WalletName, bt.HotkeyName))), nil
		}
		outcomes = append(outcomes, checks.Pass(walletName, "Hotkey at "+hotkey))

		res := r.Run(ctx, SubnetListCommand(bt.Netuid, bt.Network))
		if !res.OK() {
			return append(outcomes, checks.Fail(subnetName, res.Kind(), fmt.Sprintf("Cannot query subnet %d", bt.Netuid),
				withCause("Run registration if not registered", res.Detail()))), nil
		}
		return append(outcomes, checks.Pass(subnetName, fmt.Sprintf("Can query subnet %d", bt.Netuid))), nil
	})
}
