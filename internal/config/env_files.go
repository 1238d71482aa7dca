package config

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/wikirace/wikirace/internal/constants"
)

// LoadEnvFiles loads .env files from the working directory and the config
// directory. Best effort: missing files are fine.
func LoadEnvFiles() {
	_ = godotenv.Load(constants.ConfigEnvFileName)

	if configDir, err := ConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(configDir, constants.ConfigEnvFileName))
	}
}
