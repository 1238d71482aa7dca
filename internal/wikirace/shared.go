package wikirace

import (
	"fmt"
	"os"
	"time"

	"github.com/wikirace/wikirace/internal/config"
	"github.com/wikirace/wikirace/internal/db"
	"github.com/wikirace/wikirace/internal/ui"
)

const defaultContextTimeout = 30 * time.Second

// loadConfig loads the config from the given path, or from the working
// directory. With no path and no config file present, defaults apply: the
// Ukrainian Wikipedia against the dev stack database.
func loadConfig(configPath string) (config.Config, error) {
	path := configPath
	if path == "" {
		path = "."
	}

	cfg, _, err := config.Load(path)
	if err != nil {
		if configPath == "" {
			if _, findErr := config.FindConfigFile(path); findErr != nil {
				return config.Default(), nil
			}
		}
		return config.Config{}, err
	}
	return cfg, nil
}

// openLocalDB opens the database in the data directory, creating it on first
// use.
func openLocalDB() (*db.DB, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}
	return db.New(dataDir)
}

// exportConfigEnv resolves the config's env vars and exports them into the
// process environment, where descriptor interpolation and the database DSN
// pick them up. Best effort: a missing config or key just means nothing to
// export.
func exportConfigEnv(configPath string) {
	cfg, err := loadConfig(configPath)
	if err != nil || len(cfg.Env) == 0 {
		return
	}

	database, err := openLocalDB()
	if err != nil {
		return
	}
	defer database.Close()

	cfg, err = config.ResolveSecrets(cfg, database)
	if err != nil {
		ui.Warn("Failed to resolve config secrets: %v", err)
		return
	}

	for i := range cfg.Env {
		value, err := cfg.Env[i].GetValue()
		if err != nil {
			ui.Warn("%v", err)
			continue
		}
		os.Setenv(cfg.Env[i].Name, value)
	}
}
