package minerconfig

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Normalize converts a raw configuration document into a fully defaulted
// Config. Sections are decoded independently; a section that cannot be
// decoded is dropped and reported as a warning rather than failing the load.
func Normalize(raw map[string]any) (*Config, []string) {
	cfg := New()
	var warnings []string

	if v, ok := raw["ssh_session"]; ok {
		var s SSHSession
		if err := decode(v, &s); err != nil {
			warnings = append(warnings, fmt.Sprintf("ssh_session: %v (using default key path)", err))
		} else if s.KeyPath = strings.TrimSpace(s.KeyPath); s.KeyPath != "" {
			cfg.SSHSession.KeyPath = ExpandHome(s.KeyPath)
		}
	}

	if v, ok := raw["node_management"]; ok {
		nm, w, err := normalizeNodes(v)
		warnings = append(warnings, w...)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("node_management: %v (section ignored)", err))
		} else {
			cfg.NodeManagement = nm
		}
	}

	if v, ok := raw["bittensor"]; ok {
		bt, w, err := normalizeBittensor(v)
		warnings = append(warnings, w...)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("bittensor: %v (section ignored)", err))
		} else {
			cfg.Bittensor = bt
		}
	}

	return cfg, warnings
}

// normalizeNodes returns nil without error when the section has no nodes key.
func normalizeNodes(v any) (*NodeManagement, []string, error) {
	var section map[string]any
	if err := decode(v, &section); err != nil {
		return nil, nil, err
	}
	rawNodes, ok := section["nodes"]
	if !ok {
		return nil, nil, nil
	}

	var items []any
	if err := decode(rawNodes, &items); err != nil {
		return nil, nil, fmt.Errorf("nodes: %w", err)
	}

	var warnings []string
	nm := &NodeManagement{Nodes: make([]Node, 0, len(items))}
	for i, item := range items {
		n := Node{Port: DefaultNodePort, Username: DefaultNodeUsername}
		if err := decode(item, &n); err != nil {
			warnings = append(warnings, fmt.Sprintf("node_management.nodes[%d]: %v (node skipped)", i, err))
			continue
		}
		n.Host = strings.TrimSpace(n.Host)
		if n.Host == "" {
			warnings = append(warnings, fmt.Sprintf("node_management.nodes[%d]: missing host (node skipped)", i))
			continue
		}
		if n.Port < 1 || n.Port > 65535 {
			warnings = append(warnings, fmt.Sprintf("node_management.nodes[%d]: port %d out of range (node skipped)", i, n.Port))
			continue
		}
		if n.Username == "" {
			n.Username = DefaultNodeUsername
		}
		nm.Nodes = append(nm.Nodes, n)
	}
	return nm, warnings, nil
}

func normalizeBittensor(v any) (*Bittensor, []string, error) {
	bt := Bittensor{
		WalletName: DefaultWalletName,
		HotkeyName: DefaultHotkeyName,
		Netuid:     DefaultNetuid,
		Network:    DefaultNetwork,
	}
	if err := decode(v, &bt); err != nil {
		return nil, nil, err
	}

	var warnings []string
	if bt.WalletName == "" {
		bt.WalletName = DefaultWalletName
	}
	if bt.HotkeyName == "" {
		bt.HotkeyName = DefaultHotkeyName
	}
	if bt.Network == "" {
		bt.Network = DefaultNetwork
	}
	if bt.Netuid < 0 {
		warnings = append(warnings, fmt.Sprintf("bittensor.netuid: %d is negative (using %d)", bt.Netuid, DefaultNetuid))
		bt.Netuid = DefaultNetuid
	}
	return &bt, warnings, nil
}

// decode is a weakly typed mapstructure decode, so "2222" fills an int field.
// Fields absent from the input keep the value already in out.
func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
