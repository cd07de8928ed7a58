// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/staffhub/staffhub/internal/config"
	"github.com/staffhub/staffhub/internal/store"
)

// migrateConfig holds configuration for the migrate subcommand.
type migrateConfig struct {
	down  bool
	steps int
	force int
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cfg := &migrateConfig{force: -1}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply pending database migrations. With --down all migrations are
rolled back (destructive); --steps applies a signed number of
migrations; --force overrides the recorded version after manual
repair of a dirty database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, args, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.down, "down", false, "roll back all migrations (destructive)")
	cmd.Flags().IntVar(&cfg.steps, "steps", 0, "apply n migrations (negative rolls back)")
	cmd.Flags().IntVar(&cfg.force, "force", -1, "force the migration version without running migrations")
	cmd.Flags().String("database.url", "", "PostgreSQL connection string")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string, mcfg *migrateConfig) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrln("migrator close failed:", closeErr)
		}
	}()

	switch {
	case mcfg.force >= 0:
		if err := migrator.Force(mcfg.force); err != nil {
			return err
		}
		cmd.Printf("Forced migration version to %d\n", mcfg.force)

	case mcfg.down:
		cmd.Println("Rolling back all migrations...")
		if err := migrator.Down(); err != nil {
			return err
		}
		cmd.Println("Rollback completed")

	case mcfg.steps != 0:
		cmd.Printf("Applying %d migration step(s)...\n", mcfg.steps)
		if err := migrator.Steps(mcfg.steps); err != nil {
			return err
		}
		cmd.Println("Done")

	default:
		cmd.Println("Running migrations...")
		if err := migrator.Up(); err != nil {
			return err
		}
		cmd.Println("Migrations completed successfully")
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return oops.Code("MIGRATION_VERSION_FAILED").Wrap(err)
	}
	cmd.Printf("Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}
