package wikirace

import (
	"github.com/spf13/cobra"

	"github.com/wikirace/wikirace/internal/config"
	"github.com/wikirace/wikirace/internal/ui"
)

func ValidateConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Validate the wikirace config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configPath
			if path == "" {
				path = "."
			}
			cfg, format, err := config.Load(path)
			if err != nil {
				return err
			}
			ui.Success("Config is valid (%s)", format)
			ui.Info("Wikipedia: %s, %d workers, %d requests/min",
				cfg.Wiki.Language, cfg.Search.Workers, cfg.Wiki.RequestsPerMinute)
			return nil
		},
	}
}
