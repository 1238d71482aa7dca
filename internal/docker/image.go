package docker

import (
	"context"
	"fmt"
	"os"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/wikirace/wikirace/internal/ui"
)

// EnsureImage pulls an image unless it is already present locally.
func EnsureImage(ctx context.Context, cli *client.Client, imageName string) error {
	filterArgs := filters.NewArgs()
	filterArgs.Add("reference", imageName)

	images, err := cli.ImageList(ctx, image.ListOptions{Filters: filterArgs})
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	if len(images) > 0 {
		return nil
	}

	ui.Info("Pulling image '%s'...", imageName)
	reader, err := cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image '%s': %w", imageName, err)
	}
	defer reader.Close()

	if err := jsonmessage.DisplayJSONMessagesStream(reader, os.Stdout, os.Stdout.Fd(), false, nil); err != nil {
		if jsonErr, ok := err.(*jsonmessage.JSONError); ok {
			return fmt.Errorf("pull failed with error from Docker daemon: %s", jsonErr.Message)
		}
		return fmt.Errorf("failed to stream pull output: %w", err)
	}
	return nil
}
