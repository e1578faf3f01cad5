package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"changepoint/internal/platform/config"
	"changepoint/internal/platform/logger"
)

// cli carries what every subcommand needs once flags are parsed.
type cli struct {
	envFiles []string
	cfg      *config.Config
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:           "changepoint",
		Short:         "Change point management API",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.envFiles...)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger.New(cfg.Logging.Level, cfg.Logging.Format)
			slog.SetDefault(c.logger)
			return nil
		},
	}
	cmd.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", nil, "Env files to load before the environment (default .env, .env.local)")

	cmd.AddCommand(newServeCmd(c), newMigrateCmd(c), newSeedCmd(c))
	return cmd
}
