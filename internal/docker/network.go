package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"

	"github.com/wikirace/wikirace/internal/constants"
)

func CreateNetwork(ctx context.Context, cli *client.Client) error {
	options := network.CreateOptions{
		Driver:     "bridge",
		Attachable: true,
		Labels: map[string]string{
			"created-by": "wikirace",
		},
	}
	_, err := cli.NetworkCreate(ctx, constants.DockerNetwork, options)
	if err != nil {
		return fmt.Errorf("failed to create Docker network: %w", err)
	}
	return nil
}

func EnsureNetwork(ctx context.Context, cli *client.Client) error {
	networks, err := cli.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list Docker networks: %w", err)
	}

	for _, nw := range networks {
		if nw.Name == constants.DockerNetwork {
			return nil
		}
	}

	if err := CreateNetwork(ctx, cli); err != nil {
		return err
	}
	return nil
}
