package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/beakerhub/beakerhub/pkg/utils/logging"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("BEAKERHUB_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("BEAKERHUB_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			if databaseID == "" {
				databaseID = "(default)"
			}

			client, err := fireconf.New(ctx, projectID, databaseID, getIndexConfig(),
				fireconf.WithLogger(logger),
				fireconf.WithDryRun(dryRun),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
			} else {
				logger.Info("Applying migrations")
			}
			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			if !dryRun {
				logger.Info("Migrations applied successfully")
			}

			return nil
		},
	}
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "standups",
				Indexes: []fireconf.Index{
					// List: LabID ASC, Date DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "LabID", Order: fireconf.OrderAscending},
							{Path: "Date", Order: fireconf.OrderDescending},
						},
					},
					// List with status filter: LabID ASC, Status ASC, Date DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "LabID", Order: fireconf.OrderAscending},
							{Path: "Status", Order: fireconf.OrderAscending},
							{Path: "Date", Order: fireconf.OrderDescending},
						},
					},
				},
			},
			{
				Name: "transcripts",
				Indexes: []fireconf.Index{
					// Search page ordering: LabID ASC, CreatedAt DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "LabID", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderDescending},
						},
					},
					// ListExpiring: LabID ASC, ExpiresAt ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "LabID", Order: fireconf.OrderAscending},
							{Path: "ExpiresAt", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: "email_logs",
				Indexes: []fireconf.Index{
					// ListByStandupID / ListSince: StandupID ASC, SentAt DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "StandupID", Order: fireconf.OrderAscending},
							{Path: "SentAt", Order: fireconf.OrderDescending},
						},
					},
					// ListByLabID: LabID ASC, SentAt DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "LabID", Order: fireconf.OrderAscending},
							{Path: "SentAt", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
