package compose

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
)

var validRestartPolicies = map[string]bool{
	"":               true, // defaults to "no"
	"no":             true,
	"always":         true,
	"on-failure":     true,
	"unless-stopped": true,
}

// PortMapping is a parsed ports entry.
type PortMapping struct {
	HostIP        string
	HostPort      string
	ContainerPort string
	Protocol      string
}

// ParsePortMapping parses the short port syntax:
//
//	[ip:]host:container[/protocol]
//
// Container-only entries ("5432") are valid compose but not used in this
// descriptor, so a missing host port is rejected here.
func ParsePortMapping(entry string) (PortMapping, error) {
	mapping := PortMapping{Protocol: "tcp"}

	spec := entry
	if proto, rest, found := cutLast(spec, "/"); found {
		if rest != "tcp" && rest != "udp" {
			return mapping, fmt.Errorf("port %q: unknown protocol %q", entry, rest)
		}
		mapping.Protocol = rest
		spec = proto
	}

	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 2:
		mapping.HostPort, mapping.ContainerPort = parts[0], parts[1]
	case 3:
		if net.ParseIP(parts[0]) == nil {
			return mapping, fmt.Errorf("port %q: invalid host IP %q", entry, parts[0])
		}
		mapping.HostIP, mapping.HostPort, mapping.ContainerPort = parts[0], parts[1], parts[2]
	default:
		return mapping, fmt.Errorf("port %q: expected [ip:]host:container[/protocol]", entry)
	}

	for _, port := range []string{mapping.HostPort, mapping.ContainerPort} {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return mapping, fmt.Errorf("port %q: %q is not a valid port number", entry, port)
		}
	}

	return mapping, nil
}

// cutLast splits around the last occurrence of sep.
func cutLast(s, sep string) (before, after string, found bool) {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}

// Validate checks that the descriptor is well-formed: services exist, every
// service has an image, and ports, restart policies, volumes, and depends_on
// references all resolve.
func (f *File) Validate() error {
	if len(f.Services) == 0 {
		return errors.New("compose: no services defined")
	}

	seenContainerNames := make(map[string]string)
	for _, name := range f.ServiceNames() {
		service := f.Services[name]
		if err := f.validateService(name, service); err != nil {
			return err
		}

		if service.ContainerName != "" {
			if other, exists := seenContainerNames[service.ContainerName]; exists {
				return fmt.Errorf("compose: container_name %q used by both %q and %q", service.ContainerName, other, name)
			}
			seenContainerNames[service.ContainerName] = name
		}
	}

	return nil
}

func (f *File) validateService(name string, service Service) error {
	if name == "" {
		return errors.New("compose: service name cannot be empty")
	}
	if service.Image == "" {
		return fmt.Errorf("service %q: image is required", name)
	}

	if !validRestartPolicies[service.Restart] {
		return fmt.Errorf("service %q: invalid restart policy %q (expected no, always, on-failure, or unless-stopped)", name, service.Restart)
	}

	for _, entry := range service.Ports {
		if _, err := ParsePortMapping(entry); err != nil {
			return fmt.Errorf("service %q: %w", name, err)
		}
	}

	for envName := range service.Environment {
		if strings.ContainsAny(envName, " =") {
			return fmt.Errorf("service %q: invalid environment variable name %q", name, envName)
		}
	}

	for _, volume := range service.Volumes {
		if err := f.validateVolumeRef(name, volume); err != nil {
			return err
		}
	}

	for _, dep := range service.DependsOn {
		if _, exists := f.Services[dep]; !exists {
			return fmt.Errorf("service %q: depends_on references undefined service %q", name, dep)
		}
		if dep == name {
			return fmt.Errorf("service %q: depends_on references itself", name)
		}
	}

	return nil
}

// validateVolumeRef checks a service volume entry. The source is either an
// absolute host path or the name of a top-level volume.
func (f *File) validateVolumeRef(serviceName, volume string) error {
	parts := strings.Split(volume, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("service %q: invalid volume %q; expected 'source:/container/path[:options]'", serviceName, volume)
	}

	source, target := parts[0], parts[1]
	if !filepath.IsAbs(target) {
		return fmt.Errorf("service %q: volume container path %q is not absolute", serviceName, target)
	}

	if filepath.IsAbs(source) || strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../") {
		return nil // bind mount
	}
	if _, exists := f.Volumes[source]; !exists {
		return fmt.Errorf("service %q: volume %q references undeclared named volume %q", serviceName, volume, source)
	}
	return nil
}
