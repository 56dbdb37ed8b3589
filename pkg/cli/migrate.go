package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/repository/firestore"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/secmon-lab/tablero/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// ErrDestructiveMigration is returned when applying would drop an index and
// --allow-destructive was not given
var ErrDestructiveMigration = goerr.New("migration plan drops existing indexes")

func cmdMigrate() *cli.Command {
	var (
		projectID        string
		databaseID       string
		prefix           string
		dryRun           bool
		allowDestructive bool
	)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create the Firestore composite indexes tablero queries need",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore project ID",
				Required:    true,
				Sources:     cli.EnvVars("TABLERO_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore database ID",
				Sources:     cli.EnvVars("TABLERO_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "collection-prefix",
				Usage:       "Prefix of the collection names, as used by isolated test databases",
				Sources:     cli.EnvVars("TABLERO_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &prefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Print the plan without applying it",
				Destination: &dryRun,
			},
			&cli.BoolFlag{
				Name:        "allow-destructive",
				Usage:       "Apply plans that drop indexes",
				Destination: &allowDestructive,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default().With("project", projectID, "database", databaseID, "prefix", prefix)
			ctx = logging.With(ctx, logger)

			client, err := fireconf.NewClient(ctx, projectID, databaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client", goerr.V("project", projectID))
			}
			defer safe.Close(ctx, client)

			indexes := getIndexConfig(prefix)
			plan, err := client.GetMigrationPlan(ctx, indexes)
			if err != nil {
				return goerr.Wrap(err, "failed to plan index migration")
			}
			if len(plan.Steps) == 0 {
				logger.Info("indexes are up to date")
				return nil
			}

			destructive := 0
			for _, step := range plan.Steps {
				logger.Info("planned index change",
					"collection", step.Collection,
					"operation", step.Operation,
					"description", step.Description,
					"destructive", step.Destructive)
				if step.Destructive {
					destructive++
				}
			}

			if dryRun {
				return nil
			}
			if destructive > 0 && !allowDestructive {
				return goerr.Wrap(ErrDestructiveMigration, "refusing to apply plan",
					goerr.V("destructive_steps", destructive))
			}

			if err := client.Migrate(ctx, indexes); err != nil {
				return goerr.Wrap(err, "failed to apply index migration")
			}
			logger.Info("indexes migrated", "steps", len(plan.Steps))
			return nil
		},
	}
}

// getIndexConfig returns the composite indexes the Firestore backend queries
// need. Single field filters use the automatic indexes.
func getIndexConfig(prefix string) *fireconf.Config {
	materials := firestore.CollectionMaterials
	if prefix != "" {
		materials = prefix + "_" + materials
	}

	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: materials,
				Indexes: []fireconf.Index{
					// ListByCard: CardKey ASC, UploadedAt ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "CardKey", Order: fireconf.OrderAscending},
							{Path: "UploadedAt", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
