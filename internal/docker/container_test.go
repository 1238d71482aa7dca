package docker

import (
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortConfig(t *testing.T) {
	exposed, bindings, err := portConfig([]string{"5433:5432", "127.0.0.1:5050:80/tcp"})
	require.NoError(t, err)

	pgPort := nat.Port("5432/tcp")
	require.Contains(t, exposed, pgPort)
	require.Len(t, bindings[pgPort], 1)
	assert.Equal(t, "5433", bindings[pgPort][0].HostPort)
	assert.Empty(t, bindings[pgPort][0].HostIP)

	webPort := nat.Port("80/tcp")
	require.Len(t, bindings[webPort], 1)
	assert.Equal(t, "127.0.0.1", bindings[webPort][0].HostIP)
	assert.Equal(t, "5050", bindings[webPort][0].HostPort)
}

func TestPortConfig_Invalid(t *testing.T) {
	_, _, err := portConfig([]string{"5432"})
	assert.Error(t, err)
}

func TestRestartPolicy(t *testing.T) {
	assert.Equal(t, container.RestartPolicyAlways, restartPolicy("always").Name)
	assert.Equal(t, container.RestartPolicyOnFailure, restartPolicy("on-failure").Name)
	assert.Equal(t, container.RestartPolicyUnlessStopped, restartPolicy("unless-stopped").Name)
	assert.Equal(t, container.RestartPolicyDisabled, restartPolicy("").Name)
	assert.Equal(t, container.RestartPolicyDisabled, restartPolicy("no").Name)
}
