package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cheertaboi/tips-console/internal/fixture"
	"github.com/Cheertaboi/tips-console/internal/repository"
	"github.com/Cheertaboi/tips-console/pkg/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the console schema in Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := db.NewPostgresConnection(cmd.Context(), cfg.Postgres)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := repository.Migrate(cmd.Context(), conn); err != nil {
				return err
			}
			log.Info("schema applied", "database", cfg.Postgres.DBName)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a fixture file into Postgres",
		Long: `Apply the schema, then insert or replace the tips and packages of a
fixture file. Package tip lists are stored as revision 1, so seeding again
leaves lists saved from the console alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = cfg.Source.FixturePath
			}
			return seed(cmd.Context(), path)
		},
	}

	cmd.Flags().StringVar(&path, "fixture", "", "fixture file (default: source.fixture_path)")
	return cmd
}

func seed(ctx context.Context, path string) error {
	src, err := fixture.Load(path)
	if err != nil {
		return err
	}
	tips, _ := src.Tips(ctx)
	packages, _ := src.Packages(ctx)

	conn, err := db.NewPostgresConnection(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := repository.Migrate(ctx, conn); err != nil {
		return err
	}

	if err := repository.NewTipRepo(conn).UpsertTips(ctx, tips); err != nil {
		return err
	}
	pkgRepo := repository.NewPackageRepo(conn)
	for _, p := range packages {
		if err := pkgRepo.UpsertPackage(ctx, p); err != nil {
			return err
		}
		p.Revision = 1
		p.TipCount = len(p.Tips)
		if err := pkgRepo.ReplacePackageTips(ctx, p); err != nil {
			return fmt.Errorf("seed package %s: %w", p.ID, err)
		}
	}
	log.Info("fixture seeded", "file", path, "tips", len(tips), "packages", len(packages))
	return nil
}
