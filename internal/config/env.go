package config

import (
	"errors"
	"fmt"
)

// EnvVar is an environment variable passed to searches and the dev stack. It
// either carries a plaintext value or references a secret in the encrypted
// store; exactly one of the two must be set.
type EnvVar struct {
	Name string `json:"name" yaml:"name" toml:"name"`

	// Pointers so "set to empty string" and "not set" stay distinguishable.
	Value      *string `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	SecretName *string `json:"secretName,omitempty" yaml:"secret_name,omitempty" toml:"secret_name,omitempty"`

	// Holds the decrypted value after secret resolution.
	resolvedValue *string
}

// SetResolvedValue stores the decrypted secret value. Called by the secret
// resolution step; the plaintext never ends up in the serialized config.
func (ev *EnvVar) SetResolvedValue(value string) {
	ev.resolvedValue = &value
}

// GetValue returns the final value: the resolved secret if present,
// otherwise the plaintext value.
func (ev *EnvVar) GetValue() (string, error) {
	if ev.resolvedValue != nil {
		return *ev.resolvedValue, nil
	}
	if ev.Value != nil {
		return *ev.Value, nil
	}
	if ev.SecretName != nil {
		return "", fmt.Errorf("environment variable %q references secret %q which has not been resolved", ev.Name, *ev.SecretName)
	}
	return "", fmt.Errorf("environment variable %q has no value", ev.Name)
}

// Validate ensures the EnvVar is correctly configured.
func (ev *EnvVar) Validate() error {
	if ev.Name == "" {
		return errors.New("environment variable name cannot be empty")
	}
	if ev.Value != nil && ev.SecretName != nil {
		return fmt.Errorf("environment variable %q: cannot provide both 'value' and 'secret_name'", ev.Name)
	}
	if ev.Value == nil && ev.SecretName == nil {
		return fmt.Errorf("environment variable %q: must provide either 'value' or 'secret_name'", ev.Name)
	}
	return nil
}
