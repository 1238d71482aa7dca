package wikirace

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wikirace/wikirace/internal/constants"
)

// VersionCmd creates a new version command
func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current version of wikirace",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wikirace %s\n", constants.Version)
		},
	}

	return cmd
}
