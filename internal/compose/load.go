package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads, interpolates, and parses a compose descriptor. Variable
// references are resolved from the process environment first and then from a
// .env file next to the descriptor, matching docker compose precedence.
// The parsed file is validated before it is returned.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compose file: %w", err)
	}

	dotEnv := readDotEnv(filepath.Dir(path))
	lookup := func(name string) (string, bool) {
		if value, ok := os.LookupEnv(name); ok {
			return value, true
		}
		value, ok := dotEnv[name]
		return value, ok
	}

	file, err := Parse(data, lookup)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return file, nil
}

// Parse interpolates and decodes raw descriptor bytes. Unknown service keys
// are rejected so typos like `enviroment:` fail loudly instead of being
// silently dropped.
func Parse(data []byte, lookup LookupFunc) (*File, error) {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}

	interpolated, err := Interpolate(string(data), lookup)
	if err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(interpolated), &root); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if len(root.Content) > 0 {
		if err := checkFields(root.Content[0], extractFieldNames(reflect.TypeOf(File{})), ""); err != nil {
			return nil, err
		}
		if err := checkServiceFields(root.Content[0]); err != nil {
			return nil, err
		}
	}

	var file File
	if err := yaml.Unmarshal([]byte(interpolated), &file); err != nil {
		return nil, fmt.Errorf("failed to parse compose file: %w", err)
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// OSEnvLookup resolves interpolation variables from the process environment
// only. Used when parsing the built-in dev stack descriptor, which never has
// a .env file next to it.
func OSEnvLookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// readDotEnv loads the optional .env file used for interpolation defaults.
// A missing file is fine; a malformed one is ignored rather than failing the
// load, since docker compose warns and continues in that case too.
func readDotEnv(dir string) map[string]string {
	env, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		return nil
	}
	return env
}

// extractFieldNames returns the YAML keys a struct accepts, read from its
// yaml struct tags.
func extractFieldNames(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		// Handle tags like `yaml:"name,omitempty"`.
		fields[strings.Split(tag, ",")[0]] = true
	}
	return fields
}

// checkFields verifies a mapping node only contains expected keys.
func checkFields(node *yaml.Node, expected map[string]bool, context string) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !expected[key] {
			return fmt.Errorf("%sunknown field: %s", context, key)
		}
	}
	return nil
}

// checkServiceFields applies the unknown-field check to every service block.
func checkServiceFields(root *yaml.Node) error {
	if root.Kind != yaml.MappingNode {
		return nil
	}
	expected := extractFieldNames(reflect.TypeOf(Service{}))

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "services" {
			continue
		}
		services := root.Content[i+1]
		if services.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(services.Content); j += 2 {
			name := services.Content[j].Value
			if err := checkFields(services.Content[j+1], expected, fmt.Sprintf("service %s: ", name)); err != nil {
				return err
			}
		}
	}
	return nil
}
