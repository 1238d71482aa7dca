package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/wikirace/wikirace/internal/compose"
	"github.com/wikirace/wikirace/internal/constants"
)

// ContainerInfo is the state of one managed container.
type ContainerInfo struct {
	ID      string
	Name    string
	Service string
	State   string
	Status  string
}

// RunService creates and starts a container for a compose service. The
// service's environment must already be interpolated; values go to the
// container as-is.
func RunService(ctx context.Context, cli *client.Client, serviceName string, service compose.Service) (string, error) {
	exposedPorts, portBindings, err := portConfig(service.Ports)
	if err != nil {
		return "", fmt.Errorf("service %q: %w", serviceName, err)
	}

	labels := map[string]string{
		constants.LabelManaged: "true",
		constants.LabelService: serviceName,
	}
	for k, v := range service.Labels {
		labels[k] = v
	}

	containerConfig := &container.Config{
		Image:        service.Image,
		Env:          service.Environment.ToList(),
		Cmd:          []string(service.Command),
		Labels:       labels,
		ExposedPorts: exposedPorts,
	}

	hostConfig := &container.HostConfig{
		NetworkMode:   container.NetworkMode(constants.DockerNetwork),
		RestartPolicy: restartPolicy(service.Restart),
		Binds:         service.Volumes,
		PortBindings:  portBindings,
	}

	containerName := service.ContainerName
	if containerName == "" {
		containerName = fmt.Sprintf("wikirace-%s", serviceName)
	}

	resp, err := cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, containerName)
	if err != nil {
		return "", fmt.Errorf("failed to create container for service %q: %w", serviceName, err)
	}

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		// Remove the half-created container so a retry does not hit a name clash.
		removeErr := cli.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		if removeErr != nil {
			return "", fmt.Errorf("failed to start container for service %q: %w (cleanup also failed: %v)", serviceName, err, removeErr)
		}
		return "", fmt.Errorf("failed to start container for service %q: %w", serviceName, err)
	}

	return resp.ID, nil
}

// FindServiceContainer looks a managed container up by service label. Returns
// nil when no container exists.
func FindServiceContainer(ctx context.Context, cli *client.Client, serviceName string) (*ContainerInfo, error) {
	containers, err := ListManagedContainers(ctx, cli)
	if err != nil {
		return nil, err
	}
	for i := range containers {
		if containers[i].Service == serviceName {
			return &containers[i], nil
		}
	}
	return nil, nil
}

// ListManagedContainers returns every container carrying the managed label,
// running or not.
func ListManagedContainers(ctx context.Context, cli *client.Client) ([]ContainerInfo, error) {
	filterArgs := filters.NewArgs()
	filterArgs.Add("label", fmt.Sprintf("%s=true", constants.LabelManaged))

	containers, err := cli.ContainerList(ctx, container.ListOptions{
		Filters: filterArgs,
		All:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	infos := make([]ContainerInfo, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = c.Names[0]
			if len(name) > 0 && name[0] == '/' {
				name = name[1:]
			}
		}
		infos = append(infos, ContainerInfo{
			ID:      c.ID,
			Name:    name,
			Service: c.Labels[constants.LabelService],
			State:   c.State,
			Status:  c.Status,
		})
	}
	return infos, nil
}

// StopAndRemoveContainer stops a container and removes it together with its
// anonymous volumes. Named volumes survive so the page cache is kept across
// `stack down` and `stack up`.
func StopAndRemoveContainer(ctx context.Context, cli *client.Client, containerID string) error {
	timeout := 20
	stopOptions := container.StopOptions{Timeout: &timeout}
	if err := cli.ContainerStop(ctx, containerID, stopOptions); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	if err := cli.ContainerRemove(ctx, containerID, container.RemoveOptions{RemoveVolumes: false}); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}
	return nil
}

// ContainerLogs returns the multiplexed log stream of a container.
func ContainerLogs(ctx context.Context, cli *client.Client, containerID string, follow bool) (io.ReadCloser, error) {
	options := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     follow,
		Timestamps: false,
		Tail:       "100",
	}
	logs, err := cli.ContainerLogs(ctx, containerID, options)
	if err != nil {
		return nil, fmt.Errorf("failed to get container logs: %w", err)
	}
	return logs, nil
}

func portConfig(ports []string) (nat.PortSet, nat.PortMap, error) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, entry := range ports {
		mapping, err := compose.ParsePortMapping(entry)
		if err != nil {
			return nil, nil, err
		}
		port, err := nat.NewPort(mapping.Protocol, mapping.ContainerPort)
		if err != nil {
			return nil, nil, fmt.Errorf("port %q: %w", entry, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = append(bindings[port], nat.PortBinding{
			HostIP:   mapping.HostIP,
			HostPort: mapping.HostPort,
		})
	}
	return exposed, bindings, nil
}

func restartPolicy(policy string) container.RestartPolicy {
	switch policy {
	case "always":
		return container.RestartPolicy{Name: container.RestartPolicyAlways}
	case "on-failure":
		return container.RestartPolicy{Name: container.RestartPolicyOnFailure}
	case "unless-stopped":
		return container.RestartPolicy{Name: container.RestartPolicyUnlessStopped}
	default:
		return container.RestartPolicy{Name: container.RestartPolicyDisabled}
	}
}
