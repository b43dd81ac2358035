package probes

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/basilica-ai/minercheck/internal/checks"
)

// KeyPairProbe checks that the node key and its .pub exist, then that the
// private key is mode 0600.
func KeyPairProbe(keyPath string, stat func(string) (fs.FileInfo, error)) checks.Prober {
	const pairName = "SSH Key Pair"
	const permName = "SSH Key Permissions"

	return checks.NewProbe(pairName, probeSlack, func(context.Context) ([]checks.Outcome, error) {
		priv, privErr := stat(keyPath)
		_, pubErr := stat(keyPath + ".pub")
		if privErr != nil || pubErr != nil {
			return []checks.Outcome{checks.Fail(pairName, checks.KindEnvironmentMissing, "Keys not found",
				fmt.Sprintf("Generate with: ssh-keygen -t ed25519 -f %s -N ''", keyPath))}, nil
		}

		perm := priv.Mode().Perm()
		return []checks.Outcome{
			checks.Pass(pairName, "Keys at "+keyPath),
			checks.Check(permName, perm == 0o600,
				fmt.Sprintf("Private key permissions: %03o", perm),
				"Fix with: chmod 600 "+keyPath),
		}, nil
	})
}
