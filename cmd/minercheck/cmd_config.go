package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/basilica-ai/minercheck/internal/minerconfig"
)

type configView struct {
	Path     string              `json:"path" yaml:"path"`
	Status   minerconfig.Status  `json:"status" yaml:"status"`
	Error    string              `json:"error,omitempty" yaml:"error,omitempty"`
	Warnings []string            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Config   *minerconfig.Config `json:"config" yaml:"config"`
}

func newConfigCommand() *cobra.Command {
	var configPath, format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the configuration the checks would use",
		Long: `Load the miner configuration the same way "check" does and print it
after defaults are applied, together with any schema or normalization
warnings. Sections that are absent here are skipped by "check".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}

			loaded, src := loadConfig(configPath)
			view := configView{
				Path:     src.Path,
				Status:   src.Status,
				Error:    src.Error,
				Warnings: src.Warnings,
				Config:   loaded.Config,
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(view); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to miner.toml (or .yaml)")
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml | json")
	return cmd
}
