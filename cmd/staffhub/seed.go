// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/staffhub/staffhub/internal/auth"
	authpg "github.com/staffhub/staffhub/internal/auth/postgres"
	"github.com/staffhub/staffhub/internal/config"
	"github.com/staffhub/staffhub/internal/store"
	"github.com/staffhub/staffhub/pkg/errutil"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed subcommand.
type seedConfig struct {
	file    string
	timeout time.Duration
}

// seedEmployee is one entry in the seed file.
type seedEmployee struct {
	EmployeeID    string `yaml:"employee_id"`
	OfficialEmail string `yaml:"official_email"`
	FirstName     string `yaml:"first_name"`
	LastName      string `yaml:"last_name"`
	Department    string `yaml:"department"`
	Designation   string `yaml:"designation"`
	Password      string `yaml:"password"`
}

// seedFile is the seed file layout.
type seedFile struct {
	Employees []seedEmployee `yaml:"employees"`
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the directory with employees from a YAML file",
		Long: `Provision employee accounts from a YAML seed file. The command is
idempotent: entries that already exist are skipped. Entries without a
password are created passwordless and claimed through password
recovery.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "seed.yaml", "seed file path")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection string")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, scfg *seedConfig) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(scfg.file)
	if err != nil {
		return oops.Code("SEED_FILE_FAILED").With("path", scfg.file).Wrap(err)
	}
	var seeds seedFile
	if err := yaml.Unmarshal(raw, &seeds); err != nil {
		return oops.Code("SEED_FILE_FAILED").With("path", scfg.file).Wrap(err)
	}
	if len(seeds.Employees) == 0 {
		cmd.Println("Seed file contains no employees, nothing to do")
		return nil
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), scfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close() //nolint:errcheck
		return err
	}
	if err := migrator.Close(); err != nil {
		cmd.PrintErrln("migrator close failed:", err)
	}

	directory, err := auth.NewDirectoryService(
		authpg.NewEmployeeRepository(pool),
		auth.NewArgon2idHasher(),
		slog.Default(),
	)
	if err != nil {
		return err
	}

	created, skipped := 0, 0
	for _, e := range seeds.Employees {
		_, err := directory.Provision(ctx, auth.ProvisionInput{
			EmployeeID:    e.EmployeeID,
			OfficialEmail: e.OfficialEmail,
			FirstName:     e.FirstName,
			LastName:      e.LastName,
			Department:    e.Department,
			Designation:   e.Designation,
			Password:      e.Password,
		})
		switch {
		case err == nil:
			created++
		case errutil.Code(err) == auth.CodeEmployeeConflict:
			skipped++
		default:
			return oops.Code("SEED_FAILED").
				With("employee_id", e.EmployeeID).
				Wrap(err)
		}
	}

	cmd.Printf("Seed complete: %d created, %d already present\n", created, skipped)
	return nil
}
