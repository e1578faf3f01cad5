package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"changepoint/internal/seed"
	"changepoint/pkg/email"
)

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load reference companies, taxonomy, policies and the bootstrap admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()
			return runSeed(cmd.Context(), a)
		},
	}
}

func loadSeedFile(path string) (*seed.File, error) {
	if path == "" {
		return seed.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return seed.Parse(raw)
}

func runSeed(ctx context.Context, a *app) error {
	f, err := loadSeedFile(a.cfg.Seed.File)
	if err != nil {
		return err
	}
	var admin seed.Admin
	if a.cfg.Seed.AdminPassword != "" {
		admin = seed.Admin{
			Email:    a.cfg.Seed.AdminEmail,
			Password: a.cfg.Seed.AdminPassword,
			Name:     email.DisplayName(a.cfg.Seed.AdminEmail),
		}
	}
	svc := a.services
	res, err := seed.New(svc.companies, svc.taxonomy, svc.policies, svc.auth, a.logger).Apply(ctx, f, admin)
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "seed applied",
		"companies", res.Companies,
		"classes", res.Classes,
		"categories", res.Categories,
		"items", res.Items,
		"policies", res.Policies,
		"admin_created", res.Admin,
	)
	return nil
}
