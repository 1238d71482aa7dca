// Package compose models the docker-compose descriptor that provisions the
// wikirace dev stack: a PostgreSQL page cache and a pgAdmin web UI. It loads,
// validates, and renders the descriptor; running the declared images is left
// to Docker (or to the scoped runner in internal/stack).
package compose

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the top-level descriptor structure. The legacy version field is
// accepted and preserved but no longer required by compose.
type File struct {
	Version  string             `yaml:"version,omitempty"`
	Services map[string]Service `yaml:"services"`
	Volumes  map[string]Volume  `yaml:"volumes,omitempty"`
}

// Service declares one containerized service and its runtime wiring.
type Service struct {
	Image         string            `yaml:"image"`
	ContainerName string            `yaml:"container_name,omitempty"`
	Restart       string            `yaml:"restart,omitempty"`
	Ports         []string          `yaml:"ports,omitempty"`
	Environment   Environment       `yaml:"environment,omitempty"`
	Volumes       []string          `yaml:"volumes,omitempty"`
	Command       Command           `yaml:"command,omitempty"`
	DependsOn     []string          `yaml:"depends_on,omitempty"`
	Labels        map[string]string `yaml:"labels,omitempty"`
}

// Volume is a top-level named volume. Only the default local driver is used
// here, so the body is usually empty.
type Volume struct {
	Driver string `yaml:"driver,omitempty"`
}

// Environment holds a service's environment variables. Compose accepts two
// YAML forms and this type decodes both:
//
//	environment:
//	  POSTGRES_USER: postgres
//
//	environment:
//	  - POSTGRES_USER=postgres
//
// A bare list entry without '=' passes the variable through from the host
// environment at render time and is stored with an empty value.
type Environment map[string]string

func (e *Environment) UnmarshalYAML(node *yaml.Node) error {
	result := make(Environment)

	switch node.Kind {
	case yaml.MappingNode:
		var m map[string]string
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("environment mapping: %w", err)
		}
		for k, v := range m {
			result[k] = v
		}
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("environment list: %w", err)
		}
		for _, entry := range list {
			name, value, found := strings.Cut(entry, "=")
			if name == "" {
				return fmt.Errorf("environment entry %q has an empty variable name", entry)
			}
			if !found {
				result[name] = ""
				continue
			}
			result[name] = value
		}
	default:
		return fmt.Errorf("environment must be a mapping or a list, got %s", yamlKindName(node.Kind))
	}

	*e = result
	return nil
}

// MarshalYAML always emits the KEY=value list form so rendered descriptors
// are stable regardless of which form the input used.
func (e Environment) MarshalYAML() (any, error) {
	if len(e) == 0 {
		return nil, nil
	}
	return e.ToList(), nil
}

// ToList returns the variables as a sorted KEY=value slice, the shape both
// the Docker API and the rendered YAML use.
func (e Environment) ToList() []string {
	list := make([]string, 0, len(e))
	for name, value := range e {
		list = append(list, fmt.Sprintf("%s=%s", name, value))
	}
	sort.Strings(list)
	return list
}

// Command is a service command override. Compose accepts a plain string or a
// list of arguments; both decode into the list form.
type Command []string

func (c *Command) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return fmt.Errorf("command: %w", err)
		}
		// Whitespace splitting covers the overrides used here (flag lists
		// for postgres). Quoted arguments need the list form.
		*c = strings.Fields(s)
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("command list: %w", err)
		}
		*c = list
	default:
		return fmt.Errorf("command must be a string or a list, got %s", yamlKindName(node.Kind))
	}
	return nil
}

// Marshal renders the descriptor back to YAML with services in sorted order.
func (f *File) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to render compose file: %w", err)
	}
	return data, nil
}

// ServiceNames returns the declared service names in sorted order.
func (f *File) ServiceNames() []string {
	names := make([]string, 0, len(f.Services))
	for name := range f.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func yamlKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
