package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/wikirace/wikirace/internal/constants"
)

func ensureDir(dirPath string) error {
	return os.MkdirAll(dirPath, constants.ModeDirPrivate)
}

// DataDir returns the directory holding the local database. WIKIRACE_DATA_DIR
// overrides the default of ~/.local/share/wikirace.
func DataDir() (string, error) {
	if envPath, ok := os.LookupEnv(constants.EnvVarDataDir); ok && envPath != "" {
		envPath = expandHome(envPath)
		if err := ensureDir(envPath); err != nil {
			return "", err
		}
		return envPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(home, ".local", "share", "wikirace")
	if err := ensureDir(path); err != nil {
		return "", err
	}
	return path, nil
}

// ConfigDir returns the wikirace configuration directory, defaulting to
// ~/.config/wikirace. WIKIRACE_CONFIG_DIR overrides it.
func ConfigDir() (string, error) {
	if envPath, ok := os.LookupEnv(constants.EnvVarConfigDir); ok && envPath != "" {
		envPath = expandHome(envPath)
		if err := ensureDir(envPath); err != nil {
			return "", err
		}
		return envPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(home, ".config", "wikirace")
	if err := ensureDir(path); err != nil {
		return "", err
	}
	return path, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
