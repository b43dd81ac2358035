// Package minerconfig loads miner.toml (or a YAML equivalent) and normalizes
// it into a fully defaulted Config before any check runs.
package minerconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Default values for miner configuration. These are the single source of
// truth: New() and Normalize reference them and no other code should
// duplicate them.
const (
	DefaultPath = "/opt/basilica/config/miner.toml"
	EnvPath     = "MINERCHECK_CONFIG"

	DefaultKeyPath = "~/.ssh/miner_node_key"

	DefaultNodePort     = 22
	DefaultNodeUsername = "basilica"

	DefaultWalletName = "default"
	DefaultHotkeyName = "default"
	DefaultNetuid     = 39
	DefaultNetwork    = "finney"
)

// ErrMalformed is wrapped by Read when the file exists but cannot be used.
var ErrMalformed = errors.New("malformed configuration")

// Status describes how the configuration file was obtained.
type Status string

const (
	StatusLoaded    Status = "loaded"
	StatusMissing   Status = "missing"
	StatusMalformed Status = "malformed"
)

// SSHSession holds the key used for node connections.
type SSHSession struct {
	KeyPath string `mapstructure:"miner_node_key_path" json:"miner_node_key_path" yaml:"miner_node_key_path"`
}

// Node is one remote GPU node.
type Node struct {
	Host     string `mapstructure:"host" json:"host" yaml:"host"`
	Port     int    `mapstructure:"port" json:"port" yaml:"port"`
	Username string `mapstructure:"username" json:"username" yaml:"username"`
}

// NodeManagement lists the GPU nodes the miner manages.
type NodeManagement struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

// Bittensor identifies the wallet and subnet the miner serves.
type Bittensor struct {
	WalletName string `mapstructure:"wallet_name" json:"wallet_name" yaml:"wallet_name"`
	HotkeyName string `mapstructure:"hotkey_name" json:"hotkey_name" yaml:"hotkey_name"`
	Netuid     int    `mapstructure:"netuid" json:"netuid" yaml:"netuid"`
	Network    string `mapstructure:"network" json:"network" yaml:"network"`
}

// Config is the normalized configuration. A nil optional section means the
// section was absent or unusable.
type Config struct {
	SSHSession     SSHSession      `json:"ssh_session" yaml:"ssh_session"`
	NodeManagement *NodeManagement `json:"node_management,omitempty" yaml:"node_management,omitempty"`
	Bittensor      *Bittensor      `json:"bittensor,omitempty" yaml:"bittensor,omitempty"`
}

// New returns a Config with all hard-coded defaults populated and no
// optional sections.
func New() *Config {
	return &Config{
		SSHSession: SSHSession{KeyPath: ExpandHome(DefaultKeyPath)},
	}
}

// Loaded is the result of Load.
type Loaded struct {
	Path     string
	Status   Status
	Err      error
	Raw      map[string]any
	Config   *Config
	Warnings []string
}

// ResolvePath picks the configuration path: an explicit flag value wins, then
// $MINERCHECK_CONFIG, then DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads and normalizes the file at path. It never fails: a missing or
// malformed file yields defaults, with the problem recorded in Status and Err.
// Warnings only carry section-level normalization problems.
func Load(path string) *Loaded {
	l := &Loaded{Path: path, Status: StatusLoaded}

	raw, err := Read(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		l.Status = StatusMissing
		l.Err = err
	default:
		l.Status = StatusMalformed
		l.Err = err
	}

	l.Raw = raw
	cfg, warnings := Normalize(raw)
	l.Config = cfg
	l.Warnings = append(l.Warnings, warnings...)
	return l
}

// Read parses path as YAML when its extension is .yaml or .yml and as TOML
// otherwise. Parse and non-ENOENT read errors wrap ErrMalformed.
func Read(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrMalformed, path, err)
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = toml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrMalformed, path, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
