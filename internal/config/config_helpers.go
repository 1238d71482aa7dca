package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	ktoml "github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/v2"
)

// getConfigParser picks the koanf parser from the file extension and returns
// the tag name used on the config structs for that format.
func getConfigParser(configFile string) (string, koanf.Parser, error) {
	ext := filepath.Ext(configFile)
	switch ext {
	case ".json":
		return "json", kjson.Parser(), nil
	case ".yaml", ".yml":
		return "yaml", kyaml.Parser(), nil
	case ".toml":
		return "toml", ktoml.Parser(), nil
	}
	return "", nil, fmt.Errorf("unsupported config file type: %s", ext)
}

// checkUnknownKeys compares the flattened koanf key paths against the field
// paths the config structs declare for the given format tag. Keys below a
// slice or map field are accepted wholesale; their contents are validated by
// Validate after decoding.
func checkUnknownKeys(t reflect.Type, keys []string, format string) error {
	allowed := make(map[string]bool)
	openPrefixes := []string{}
	collectFieldPaths(t, format, "", allowed, &openPrefixes)

	for _, key := range keys {
		if keyAllowed(key, allowed, openPrefixes) {
			continue
		}
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func collectFieldPaths(t reflect.Type, format, prefix string, allowed map[string]bool, openPrefixes *[]string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get(format)
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name == "" {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		allowed[path] = true

		fieldType := field.Type
		for fieldType.Kind() == reflect.Pointer {
			fieldType = fieldType.Elem()
		}
		switch fieldType.Kind() {
		case reflect.Struct:
			collectFieldPaths(fieldType, format, path, allowed, openPrefixes)
		case reflect.Slice, reflect.Map:
			*openPrefixes = append(*openPrefixes, path+".")
		}
	}
}

func keyAllowed(key string, allowed map[string]bool, openPrefixes []string) bool {
	if allowed[key] {
		return true
	}
	for _, prefix := range openPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
