package wikirace

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wikirace/wikirace/internal/helpers"
	"github.com/wikirace/wikirace/internal/ui"
)

// SecretsSetCmd encrypts a plain-text value and stores it under the provided name.
func SecretsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set <name> <value>",
		Short:   "Encrypt a plain-text value and store it under <name>",
		Example: "  wikirace secrets set DB_PASSWORD 'p@ssw0rd!'",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				ui.Error("Error: You must provide a <name> and a <value> to store a secret.\n")
				ui.Info("%s", cmd.UsageString())
				return fmt.Errorf("requires at least 2 arg(s), only received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			value := strings.Join(args[1:], " ")

			database, err := openLocalDB()
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.SetSecret(name, value); err != nil {
				return err
			}
			ui.Success("Secret '%s' set successfully", name)
			return nil
		},
	}
	return cmd
}

// SecretsListCmd lists all stored secrets in a table. Values stay encrypted;
// only names and timestamps are shown.
func SecretsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored secrets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := openLocalDB()
			if err != nil {
				return err
			}
			defer database.Close()

			secrets, err := database.GetSecretsList()
			if err != nil {
				return err
			}
			if len(secrets) == 0 {
				ui.Info("No secrets found.")
				return nil
			}

			headers := []string{"NAME", "UPDATED"}
			rows := make([][]string, 0, len(secrets))
			for _, secret := range secrets {
				rows = append(rows, []string{secret.Name, helpers.FormatRelativeTime(secret.UpdatedAt)})
			}
			ui.Table(headers, rows)
			return nil
		},
	}
}

func SecretsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			database, err := openLocalDB()
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.DeleteSecret(name); err != nil {
				return err
			}
			ui.Success("Secret '%s' deleted successfully", name)
			return nil
		},
	}
}

func SecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage encrypted secrets referenced from the config",
	}
	cmd.AddCommand(SecretsSetCmd())
	cmd.AddCommand(SecretsListCmd())
	cmd.AddCommand(SecretsDeleteCmd())
	return cmd
}
