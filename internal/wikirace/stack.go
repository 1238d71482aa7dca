package wikirace

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wikirace/wikirace/internal/compose"
	"github.com/wikirace/wikirace/internal/constants"
	"github.com/wikirace/wikirace/internal/docker"
	"github.com/wikirace/wikirace/internal/stack"
	"github.com/wikirace/wikirace/internal/store"
	"github.com/wikirace/wikirace/internal/ui"
)

func StackCmd() *cobra.Command {
	var fileFlag string

	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Manage the local database stack (PostgreSQL + pgAdmin)",
	}
	cmd.PersistentFlags().StringVarP(&fileFlag, "file", "f", "", "Path to a compose descriptor (default: ./docker-compose.yml or built-in)")

	cmd.AddCommand(
		stackUpCmd(&fileFlag),
		stackDownCmd(),
		stackStatusCmd(&fileFlag),
		stackLogsCmd(),
		stackValidateCmd(&fileFlag),
		stackRenderCmd(),
	)
	return cmd
}

// loadStackFile loads the compose descriptor: an explicit --file, then
// ./docker-compose.yml, then the built-in descriptor that matches the shipped
// file.
func loadStackFile(path string) (*compose.File, error) {
	if path != "" {
		return compose.Load(path)
	}
	if _, err := os.Stat(constants.ComposeFileName); err == nil {
		return compose.Load(constants.ComposeFileName)
	}

	file := compose.DevStack()
	data, err := file.Marshal()
	if err != nil {
		return nil, err
	}
	// Round-trip through Parse so env interpolation and validation apply to
	// the built-in descriptor too.
	return compose.Parse(data, compose.OSEnvLookup)
}

func stackUpCmd(fileFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Start the database stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Secrets referenced from the config (e.g. POSTGRES_PASSWORD)
			// feed the descriptor's variable interpolation.
			exportConfigEnv("")

			file, err := loadStackFile(*fileFlag)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), defaultContextTimeout)
			defer cancel()

			cli, err := docker.NewClient(ctx)
			if err != nil {
				return err
			}
			defer cli.Close()

			if err := stack.Up(ctx, cli, file); err != nil {
				return err
			}
			ui.Success("Stack is up")
			return nil
		},
	}
}

func stackDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Stop and remove the stack containers (named volumes are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultContextTimeout)
			defer cancel()

			cli, err := docker.NewClient(ctx)
			if err != nil {
				return err
			}
			defer cli.Close()

			return stack.Down(ctx, cli)
		},
	}
}

func stackStatusCmd(fileFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of every stack service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadStackFile(*fileFlag)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), defaultContextTimeout)
			defer cancel()

			cli, err := docker.NewClient(ctx)
			if err != nil {
				return err
			}
			defer cli.Close()

			statuses, err := stack.Status(ctx, cli, file)
			if err != nil {
				return err
			}

			headers := []string{"SERVICE", "IMAGE", "CONTAINER", "STATE", "STATUS"}
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				rows = append(rows, []string{s.Service, s.Image, s.ContainerName, s.State, s.Status})
			}
			ui.Table(headers, rows)

			printCacheStatus(ctx)
			return nil
		},
	}
}

// printCacheStatus reports the page cache size when the database is
// reachable. Best effort; a down stack is already visible in the table above.
func printCacheStatus(ctx context.Context) {
	cfg, err := loadConfig("")
	if err != nil {
		return
	}
	s, err := store.Open(ctx, cfg.Database.DSN())
	if err != nil {
		return
	}
	defer s.Close()

	if count, err := s.PageCount(ctx); err == nil {
		ui.Info("Page cache holds %d pages", count)
	}
}

func stackLogsCmd() *cobra.Command {
	var followFlag bool

	cmd := &cobra.Command{
		Use:   "logs [service]",
		Short: "Stream logs from stack containers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceName := ""
			if len(args) == 1 {
				serviceName = args[0]
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cli, err := docker.NewClient(ctx)
			if err != nil {
				return err
			}
			defer cli.Close()

			return stack.Logs(ctx, cli, serviceName, followFlag, os.Stdout)
		},
	}

	// No -f shorthand: the parent stack command already uses it for --file.
	cmd.Flags().BoolVar(&followFlag, "follow", false, "Follow log output")
	return cmd
}

func stackValidateCmd(fileFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the compose descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadStackFile(*fileFlag)
			if err != nil {
				return err
			}
			ui.Success("Descriptor is valid (%d services: %v)", len(file.Services), file.ServiceNames())
			return nil
		},
	}
}

func stackRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Print the built-in compose descriptor",
		Long:  "Prints the built-in descriptor as YAML. Pipe it to a file to customize the stack:\n\n  wikirace stack render > docker-compose.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := compose.DevStack().Marshal()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}
