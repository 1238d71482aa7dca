package wikirace

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikirace/wikirace/internal/helpers"
	"github.com/wikirace/wikirace/internal/ui"
)

func HistoryCmd(configPath *string) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent races",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openLocalDB()
			if err != nil {
				return err
			}
			defer database.Close()

			races, err := database.GetRaceHistory(limitFlag)
			if err != nil {
				return err
			}
			if len(races) == 0 {
				ui.Info("No races recorded yet. Run 'wikirace race <start> <finish>' first.")
				return nil
			}

			headers := []string{"RACE", "PATH", "DURATION", "WHEN"}
			rows := make([][]string, 0, len(races))
			for _, race := range races {
				path := "not found"
				if len(race.Path) > 0 {
					path = strings.Join(race.Path, " -> ")
				}
				rows = append(rows, []string{
					fmt.Sprintf("%s -> %s", race.Start, race.Finish),
					path,
					(time.Duration(race.DurationMS) * time.Millisecond).String(),
					helpers.FormatRelativeTime(race.CreatedAt),
				})
			}
			ui.Table(headers, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Number of races to show")
	return cmd
}
