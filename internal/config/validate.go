package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	languageRe = regexp.MustCompile(`^[a-z]{2,12}$`)
	dbNameRe   = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks the normalized config. Field paths in error messages use
// the yaml spelling regardless of the source format; the files are small
// enough that this has never confused anyone.
func (c *Config) Validate() error {
	if !languageRe.MatchString(c.Wiki.Language) {
		return fmt.Errorf("wiki.language: invalid language code %q", c.Wiki.Language)
	}
	if c.Wiki.LinkLimit < 1 || c.Wiki.LinkLimit > 500 {
		return fmt.Errorf("wiki.link_limit: must be between 1 and 500, got %d", c.Wiki.LinkLimit)
	}
	if c.Wiki.RequestsPerMinute < 1 {
		return errors.New("wiki.requests_per_minute: must be at least 1")
	}

	if c.Search.Workers < 1 || c.Search.Workers > 32 {
		return fmt.Errorf("search.workers: must be between 1 and 32, got %d", c.Search.Workers)
	}

	if c.Database.Host == "" {
		return errors.New("database.host: cannot be empty")
	}
	if err := validatePort(c.Database.Port); err != nil {
		return fmt.Errorf("database.port: %w", err)
	}
	if c.Database.User == "" {
		return errors.New("database.user: cannot be empty")
	}
	if !dbNameRe.MatchString(c.Database.Name) {
		return fmt.Errorf("database.name: invalid database name %q", c.Database.Name)
	}
	if !validSSLModes[c.Database.SSLMode] {
		return fmt.Errorf("database.ssl_mode: invalid mode %q", c.Database.SSLMode)
	}
	if c.Database.Password != "" && c.Database.PasswordSecret != "" {
		return errors.New("database: cannot provide both 'password' and 'password_secret'")
	}

	if c.History.Keep < 1 {
		return errors.New("history.keep: must be at least 1")
	}

	seenEnvNames := make(map[string]struct{})
	for i, envVar := range c.Env {
		if err := envVar.Validate(); err != nil {
			return fmt.Errorf("env[%d]: %w", i, err)
		}
		if _, exists := seenEnvNames[envVar.Name]; exists {
			return fmt.Errorf("env[%d]: duplicate environment variable %q", i, envVar.Name)
		}
		seenEnvNames[envVar.Name] = struct{}{}
	}

	return nil
}

func validatePort(p Port) error {
	n, err := strconv.Atoi(string(p))
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%q is not a valid port", string(p))
	}
	return nil
}
