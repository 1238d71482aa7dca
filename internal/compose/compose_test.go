package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devStackYAML = `
services:
  db:
    image: postgres:14-alpine
    container_name: wikirace-db
    restart: always
    command: postgres -c max_connections=200
    ports:
      - "5433:5432"
    environment:
      POSTGRES_USER: postgres
      POSTGRES_PASSWORD: ${POSTGRES_PASSWORD:-postgres}
      POSTGRES_DB: wikiracedb
    volumes:
      - pgdata:/var/lib/postgresql/data
  pgadmin:
    image: dpage/pgadmin4:8
    container_name: wikirace-pgadmin
    restart: always
    ports:
      - "5050:80"
    environment:
      - PGADMIN_DEFAULT_EMAIL=admin@wikirace.local
      - PGADMIN_DEFAULT_PASSWORD=admin
    depends_on:
      - db
volumes:
  pgdata: {}
`

func TestParse_DevStackDescriptor(t *testing.T) {
	file, err := Parse([]byte(devStackYAML), nil)
	require.NoError(t, err)

	// The descriptor declares exactly two named services.
	require.Len(t, file.Services, 2)
	assert.Equal(t, []string{"db", "pgadmin"}, file.ServiceNames())

	db := file.Services["db"]
	assert.Equal(t, "postgres:14-alpine", db.Image)
	assert.Equal(t, "wikirace-db", db.ContainerName)
	assert.Equal(t, "always", db.Restart)
	assert.Equal(t, []string{"5433:5432"}, db.Ports)
	assert.Equal(t, Command{"postgres", "-c", "max_connections=200"}, db.Command)
	assert.Equal(t, []string{"pgdata:/var/lib/postgresql/data"}, db.Volumes)
	// POSTGRES_PASSWORD was unset, so the interpolation default applies.
	assert.Equal(t, "postgres", db.Environment["POSTGRES_PASSWORD"])
	assert.Equal(t, "wikiracedb", db.Environment["POSTGRES_DB"])

	pgadmin := file.Services["pgadmin"]
	assert.Equal(t, "dpage/pgadmin4:8", pgadmin.Image)
	assert.Equal(t, []string{"db"}, pgadmin.DependsOn)
	// The list form decodes into the same map shape as the mapping form.
	assert.Equal(t, "admin@wikirace.local", pgadmin.Environment["PGADMIN_DEFAULT_EMAIL"])
}

func TestParse_EnvironmentForms(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected Environment
		wantErr  string
	}{
		{
			name: "mapping form",
			yaml: "services:\n  db:\n    image: postgres\n    environment:\n      A: one\n      B: two\n",
			expected: Environment{
				"A": "one",
				"B": "two",
			},
		},
		{
			name: "list form",
			yaml: "services:\n  db:\n    image: postgres\n    environment:\n      - A=one\n      - B=two=with=equals\n",
			expected: Environment{
				"A": "one",
				"B": "two=with=equals",
			},
		},
		{
			name: "bare passthrough entry",
			yaml: "services:\n  db:\n    image: postgres\n    environment:\n      - PASSTHROUGH\n",
			expected: Environment{
				"PASSTHROUGH": "",
			},
		},
		{
			name:    "scalar form rejected",
			yaml:    "services:\n  db:\n    image: postgres\n    environment: nope\n",
			wantErr: "environment must be a mapping or a list",
		},
		{
			name:    "entry with empty name rejected",
			yaml:    "services:\n  db:\n    image: postgres\n    environment:\n      - =oops\n",
			wantErr: "empty variable name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := Parse([]byte(tt.yaml), nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, file.Services["db"].Environment)
		})
	}
}

func TestEnvironment_ToList(t *testing.T) {
	env := Environment{
		"POSTGRES_USER": "postgres",
		"POSTGRES_DB":   "wikiracedb",
	}
	// Sorted, KEY=value.
	assert.Equal(t, []string{"POSTGRES_DB=wikiracedb", "POSTGRES_USER=postgres"}, env.ToList())
}

func TestCommand_Forms(t *testing.T) {
	stringForm := "services:\n  db:\n    image: postgres\n    command: postgres -c fsync=off\n"
	listForm := "services:\n  db:\n    image: postgres\n    command: [\"postgres\", \"-c\", \"fsync=off\"]\n"

	for _, yamlText := range []string{stringForm, listForm} {
		file, err := Parse([]byte(yamlText), nil)
		require.NoError(t, err)
		assert.Equal(t, Command{"postgres", "-c", "fsync=off"}, file.Services["db"].Command)
	}
}

func TestParse_UnknownFields(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "top level typo",
			yaml:    "servces:\n  db:\n    image: postgres\n",
			wantErr: "unknown field: servces",
		},
		{
			name:    "service level typo",
			yaml:    "services:\n  db:\n    image: postgres\n    enviroment:\n      A: one\n",
			wantErr: "service db: unknown field: enviroment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FromFileWithDotEnv(t *testing.T) {
	dir := t.TempDir()
	composePath := filepath.Join(dir, "docker-compose.yml")
	require.NoError(t, os.WriteFile(composePath, []byte(
		"services:\n  db:\n    image: postgres\n    environment:\n      POSTGRES_PASSWORD: ${POSTGRES_PASSWORD}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("POSTGRES_PASSWORD=fromdotenv\n"), 0o644))

	file, err := Load(composePath)
	require.NoError(t, err)
	assert.Equal(t, "fromdotenv", file.Services["db"].Environment["POSTGRES_PASSWORD"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read compose file")
}

func TestDevStack_RoundTrip(t *testing.T) {
	data, err := DevStack().Marshal()
	require.NoError(t, err)

	file, err := Parse(data, nil)
	require.NoError(t, err)
	require.Len(t, file.Services, 2)
	assert.Contains(t, file.Services, "db")
	assert.Contains(t, file.Services, "pgadmin")

	// Interpolation defaults resolve during the round trip.
	assert.Equal(t, "postgres", file.Services["db"].Environment["POSTGRES_PASSWORD"])
	assert.Equal(t, []string{"db"}, file.Services["pgadmin"].DependsOn)
}
