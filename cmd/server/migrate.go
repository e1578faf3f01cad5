package main

import (
	"errors"

	"github.com/spf13/cobra"

	"changepoint/internal/platform/postgres"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if c.cfg.Database.URL == "" {
					return errors.New("DATABASE_URL is required")
				}
				db, err := postgres.Open(cmd.Context(), c.cfg.Database)
				if err != nil {
					return err
				}
				defer db.Close()
				return postgres.Migrate(cmd.Context(), db, c.logger)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if c.cfg.Database.URL == "" {
					return errors.New("DATABASE_URL is required")
				}
				db, err := postgres.Open(cmd.Context(), c.cfg.Database)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := postgres.Rollback(cmd.Context(), db); err != nil {
					return err
				}
				c.logger.Info("rolled back one migration")
				return nil
			},
		},
	)
	return cmd
}
