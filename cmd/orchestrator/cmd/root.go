// Package cmd builds the orchestrator binary's cobra command tree,
// mirroring the cobra+viper wiring the pack's cosmos-sdk application
// (apps/cosmos's ocpd) uses for its own root command, scaled down to
// this repository's much smaller surface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/clawarena/orchestrator/internal/config"
)

const envPrefix = "CLAWARENA"

// NewRootCmd creates the orchestrator's root command.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "orchestrator",
		Short:         "ClawArena tournament orchestrator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML/TOML/JSON config file")

	root.AddCommand(newServeCmd(&configPath))
	return root
}

func loadConfig(configPath string) (config.Config, error) {
	return config.Load(configPath)
}
