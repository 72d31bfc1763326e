package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hollowoak/farmhand/internal/db"
)

func newMigrateCmd() *cobra.Command {
	var (
		configPath string
		seed       bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Runs schema migration for all Farmhand tables. With --seed, also inserts starter locations and a default plan. Safe to run multiple times.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.OutOrStdout(), configPath, seed)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "farmhand.yaml", "path to Farmhand config file")
	cmd.Flags().BoolVar(&seed, "seed", false, "insert starter data after migrating")
	return cmd
}

func runMigrate(out io.Writer, configPath string, seed bool) error {
	_, conn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(conn); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if seed {
		if err := db.SeedStarterData(conn); err != nil {
			return err
		}
		fmt.Fprintln(out, "Seeded starter locations and default plan")
	}
	return nil
}
