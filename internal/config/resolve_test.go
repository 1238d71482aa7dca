package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecretDecryptedValue(name string) (string, error) {
	value, ok := f[name]
	if !ok {
		return "", fmt.Errorf("secret %q not found", name)
	}
	return value, nil
}

func TestResolveSecrets(t *testing.T) {
	secretName := "db-password"
	plainValue := "plain"
	cfg := Default()
	cfg.Env = []EnvVar{
		{Name: "PLAIN", Value: &plainValue},
		{Name: "FROM_SECRET", SecretName: &secretName},
	}
	cfg.Database.PasswordSecret = "db-password"

	resolved, err := ResolveSecrets(cfg, fakeSecrets{"db-password": "hunter2"})
	require.NoError(t, err)

	value, err := resolved.Env[1].GetValue()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)
	assert.Equal(t, "hunter2", resolved.Database.Password)

	// The original config is untouched.
	_, err = cfg.Env[1].GetValue()
	require.Error(t, err)
	assert.Empty(t, cfg.Database.Password)
}

func TestResolveSecrets_MissingSecret(t *testing.T) {
	secretName := "nope"
	cfg := Default()
	cfg.Env = []EnvVar{{Name: "X", SecretName: &secretName}}

	_, err := ResolveSecrets(cfg, fakeSecrets{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `secret "nope" not found`)
}
