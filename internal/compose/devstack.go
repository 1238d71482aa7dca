package compose

import (
	"github.com/wikirace/wikirace/internal/constants"
)

// DevStack returns the descriptor for the repository's own two-service dev
// stack: the PostgreSQL page cache and the pgAdmin web UI in front of it.
// `wikirace stack render` writes this to docker-compose.yml; `wikirace stack
// up` runs it directly.
func DevStack() *File {
	return &File{
		Services: map[string]Service{
			"db": {
				Image:         constants.DBImage,
				ContainerName: constants.DBContainerName,
				Restart:       "always",
				Ports: []string{
					// 5433 on the host so a locally installed PostgreSQL
					// keeps its default port.
					constants.DefaultDBPort + ":5432",
				},
				Environment: Environment{
					"POSTGRES_USER":     constants.DefaultDBUser,
					"POSTGRES_PASSWORD": "${POSTGRES_PASSWORD:-postgres}",
					"POSTGRES_DB":       constants.DefaultDBName,
				},
				Volumes: []string{
					"pgdata:/var/lib/postgresql/data",
				},
				// The racer's worker pool plus pgAdmin can exhaust the
				// default 100-connection limit during long crawls.
				Command: Command{"postgres", "-c", "max_connections=200"},
			},
			"pgadmin": {
				Image:         constants.PgAdminImage,
				ContainerName: constants.PgAdminContainerName,
				Restart:       "always",
				Ports: []string{
					"5050:80",
				},
				Environment: Environment{
					"PGADMIN_DEFAULT_EMAIL":    "${PGADMIN_DEFAULT_EMAIL:-admin@wikirace.local}",
					"PGADMIN_DEFAULT_PASSWORD": "${PGADMIN_DEFAULT_PASSWORD:-admin}",
				},
				DependsOn: []string{"db"},
			},
		},
		Volumes: map[string]Volume{
			"pgdata": {},
		},
	}
}
