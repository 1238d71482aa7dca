package constants

import "os"

const (
	Version = "0.1.0"

	// Wikipedia API defaults. The original race ran against the Ukrainian
	// edition, so that stays the default language.
	DefaultWikiLanguage      = "uk"
	DefaultLinkLimit         = 200
	DefaultRequestsPerMinute = 100
	DefaultSearchWorkers     = 4

	// Dev stack containers managed by `wikirace stack`.
	DBContainerName      = "wikirace-db"
	PgAdminContainerName = "wikirace-pgadmin"
	DockerNetwork        = "wikirace"
	DBImage              = "postgres:14-alpine"
	PgAdminImage         = "dpage/pgadmin4:8"

	// Page cache defaults. Host port 5433 avoids clashing with a local
	// PostgreSQL install, mirroring the shipped docker-compose.yml.
	DefaultDBHost = "localhost"
	DefaultDBPort = "5433"
	DefaultDBUser = "postgres"
	DefaultDBName = "wikiracedb"

	DefaultHistoryToKeep = 50

	// Environment variables
	EnvVarAgeIdentity = "WIKIRACE_ENCRYPTION_KEY"
	EnvVarDataDir     = "WIKIRACE_DATA_DIR"
	EnvVarConfigDir   = "WIKIRACE_CONFIG_DIR"
	EnvVarDBPassword  = "WIKIRACE_DB_PASSWORD"

	// Labels stamped on containers managed by `wikirace stack`.
	LabelManaged = "wikirace.managed"
	LabelService = "wikirace.service"

	// File names
	ComposeFileName   = "docker-compose.yml"
	ConfigEnvFileName = ".env"
)

// File and directory permissions
const (
	ModeFileSecret  os.FileMode = 0o600 // secrets: .env, keys
	ModeFileDefault os.FileMode = 0o644 // non-secret configs
	ModeDirPrivate  os.FileMode = 0o700 // private dirs
)
