package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/repository/firestore"
	"github.com/secmon-lab/tablero/pkg/repository/memory"
	"github.com/secmon-lab/tablero/pkg/repository/sqlite"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendFirestore = "firestore"
	BackendSQLite    = "sqlite"
	BackendMemory    = "memory"
)

// Repository selects where tickets, content items and materials are stored
type Repository struct {
	backend    string
	projectID  string
	databaseID string
	prefix     string
	sqlitePath string
}

func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Where records are stored: firestore, sqlite or memory",
			Value:       BackendFirestore,
			Category:    "Repository",
			Sources:     cli.EnvVars("TABLERO_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore project ID, required by the firestore backend",
			Category:    "Repository",
			Sources:     cli.EnvVars("TABLERO_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("TABLERO_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "collection-prefix",
			Usage:       "Prefix of the Firestore collection names",
			Category:    "Repository",
			Sources:     cli.EnvVars("TABLERO_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.prefix,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "Database file of the sqlite backend",
			Value:       "tablero.db",
			Category:    "Repository",
			Sources:     cli.EnvVars("TABLERO_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
	}
}

func (r *Repository) Backend() string {
	return r.backend
}

// Configure opens the selected backend. The caller closes it.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	logger := logging.From(ctx).With("backend", r.backend)

	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "firestore-project-id is required by the firestore backend")
		}
		var opts []firestore.Option
		if r.prefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.prefix))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open firestore", goerr.V("project", r.projectID))
		}
		logger.Info("repository ready", "project", r.projectID, "database", r.databaseID, "prefix", r.prefix)
		return repo, nil

	case BackendSQLite:
		if r.sqlitePath == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "sqlite-path is required by the sqlite backend")
		}
		repo, err := sqlite.New(ctx, r.sqlitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open sqlite", goerr.V("path", r.sqlitePath))
		}
		logger.Info("repository ready", "path", r.sqlitePath)
		return repo, nil

	case BackendMemory:
		logger.Warn("records are kept in memory and lost on exit")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "unknown repository backend", goerr.V("backend", r.backend))
	}
}
