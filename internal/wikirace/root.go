// Package wikirace wires the CLI commands together.
package wikirace

import (
	"github.com/spf13/cobra"

	"github.com/wikirace/wikirace/internal/config"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "wikirace",
		Short: "wikirace finds a chain of links between two Wikipedia pages",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnvFiles() // load environment variables in .env for all commands.
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file or directory (default: .)")

	cmd.AddCommand(
		RaceCmd(&configPath),
		HistoryCmd(&configPath),
		StackCmd(),
		SecretsCmd(),
		ValidateConfigCmd(&configPath),
		VersionCmd(),
		CompletionCmd(),
	)

	return cmd
}
