package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/vaultkey/internal/vault/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := app.LoadConfig(envFile)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		db, err := app.OpenStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.ApplyMigrations(); err != nil {
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}

		version, dirty, err := db.MigrationVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s at schema version %d (dirty=%t)\n", cfg.DatabaseFile, version, dirty)
		return nil
	},
}
