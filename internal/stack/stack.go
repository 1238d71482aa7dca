// Package stack runs the services of the shipped compose descriptor as
// plain containers through the Docker Engine API. It covers exactly what the
// descriptor needs: pull, create, start, stop, status, and logs.
package stack

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/wikirace/wikirace/internal/compose"
	"github.com/wikirace/wikirace/internal/docker"
	"github.com/wikirace/wikirace/internal/helpers"
	"github.com/wikirace/wikirace/internal/ui"
)

// ServiceStatus is the observed state of one service.
type ServiceStatus struct {
	Service       string
	ContainerName string
	Image         string
	State         string // "running", "exited", or "not created"
	Status        string
}

// Up starts every service in dependency order. Services that already have a
// running container are left alone, so calling Up twice is safe.
func Up(ctx context.Context, cli *client.Client, file *compose.File) error {
	order, err := dependencyOrder(file)
	if err != nil {
		return err
	}

	if err := docker.EnsureNetwork(ctx, cli); err != nil {
		return err
	}

	for _, name := range order {
		service := file.Services[name]
		prefixedUI := &ui.PrefixedUI{Prefix: fmt.Sprintf("[%s] ", name)}

		existing, err := docker.FindServiceContainer(ctx, cli, name)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.State == "running" {
				prefixedUI.Info("Already running (%s)", helpers.SafeIDPrefix(existing.ID))
				continue
			}
			prefixedUI.Info("Removing stopped container %s", helpers.SafeIDPrefix(existing.ID))
			if err := docker.StopAndRemoveContainer(ctx, cli, existing.ID); err != nil {
				return fmt.Errorf("service %q: %w", name, err)
			}
		}

		if err := docker.EnsureImage(ctx, cli, service.Image); err != nil {
			return fmt.Errorf("service %q: %w", name, err)
		}

		containerID, err := docker.RunService(ctx, cli, name, service)
		if err != nil {
			return err
		}
		prefixedUI.Success("Started (%s)", helpers.SafeIDPrefix(containerID))
	}
	return nil
}

// Down stops and removes every managed container. Named volumes are kept, so
// the page cache survives a restart of the stack.
func Down(ctx context.Context, cli *client.Client) error {
	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		return err
	}
	if len(containers) == 0 {
		ui.Info("No stack containers found")
		return nil
	}

	for _, c := range containers {
		prefixedUI := &ui.PrefixedUI{Prefix: fmt.Sprintf("[%s] ", c.Service)}
		if err := docker.StopAndRemoveContainer(ctx, cli, c.ID); err != nil {
			prefixedUI.Error("Failed to remove: %v", err)
			continue
		}
		prefixedUI.Success("Stopped and removed")
	}
	return nil
}

// Status reports the state of every service in the descriptor, including
// services with no container at all.
func Status(ctx context.Context, cli *client.Client, file *compose.File) ([]ServiceStatus, error) {
	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		return nil, err
	}

	byService := make(map[string]docker.ContainerInfo)
	for _, c := range containers {
		byService[c.Service] = c
	}

	var statuses []ServiceStatus
	for _, name := range file.ServiceNames() {
		service := file.Services[name]
		status := ServiceStatus{
			Service: name,
			Image:   service.Image,
			State:   "not created",
		}
		if c, ok := byService[name]; ok {
			status.ContainerName = c.Name
			status.State = c.State
			status.Status = c.Status
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// Logs streams container logs to out, each line prefixed with its service
// name. An empty serviceName selects all services.
func Logs(ctx context.Context, cli *client.Client, serviceName string, follow bool, out io.Writer) error {
	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		return err
	}

	var selected []docker.ContainerInfo
	for _, c := range containers {
		if serviceName == "" || c.Service == serviceName {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		if serviceName != "" {
			return fmt.Errorf("no container found for service %q", serviceName)
		}
		return fmt.Errorf("no stack containers found")
	}

	var wg sync.WaitGroup
	for _, c := range selected {
		logs, err := docker.ContainerLogs(ctx, cli, c.ID, follow)
		if err != nil {
			return err
		}

		wg.Add(1)
		go func(service string, logs io.ReadCloser) {
			defer wg.Done()
			defer logs.Close()
			prefixed := helpers.NewPrefixWriter(out, fmt.Sprintf("[%s] ", service))
			// Docker multiplexes stdout and stderr into one stream.
			if _, err := stdcopy.StdCopy(prefixed, prefixed, logs); err != nil && ctx.Err() == nil {
				ui.Warn("Log stream for %s ended: %v", service, err)
			}
		}(c.Service, logs)
	}
	wg.Wait()
	return nil
}

// dependencyOrder sorts services so dependencies start before their
// dependents.
func dependencyOrder(file *compose.File) ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(file.Services))
	order := make([]string, 0, len(file.Services))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("compose: dependency cycle through service %q", name)
		}
		state[name] = visiting
		for _, dep := range file.Services[name].DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range file.ServiceNames() {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
