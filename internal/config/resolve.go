package config

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// SecretSource yields decrypted secret values by name. Satisfied by the
// local database's secret store.
type SecretSource interface {
	GetSecretDecryptedValue(name string) (string, error)
}

// ResolveSecrets returns a deep copy of the config with every secret
// reference replaced by its decrypted value. The input config is never
// mutated, so plaintext secrets cannot leak into anything serialized from
// it.
func ResolveSecrets(cfg Config, secrets SecretSource) (Config, error) {
	var resolved Config
	if err := copier.CopyWithOption(&resolved, &cfg, copier.Option{DeepCopy: true}); err != nil {
		return Config{}, fmt.Errorf("failed to copy config: %w", err)
	}

	for i := range resolved.Env {
		if resolved.Env[i].SecretName == nil {
			continue
		}
		value, err := secrets.GetSecretDecryptedValue(*resolved.Env[i].SecretName)
		if err != nil {
			return Config{}, fmt.Errorf("env %q: %w", resolved.Env[i].Name, err)
		}
		resolved.Env[i].SetResolvedValue(value)
	}

	if resolved.Database.PasswordSecret != "" {
		value, err := secrets.GetSecretDecryptedValue(resolved.Database.PasswordSecret)
		if err != nil {
			return Config{}, fmt.Errorf("database.password_secret: %w", err)
		}
		resolved.Database.Password = value
	}

	return resolved, nil
}
