package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/vaultkey/internal/vault/app"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "vault",
	Short: "Vault key service",
	Long:  "Stores end-to-end encrypted vaults and rotates account keys atomically across every record wrapped under them.",
	// serve is the default command
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = app.BuildVersion
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file (default: ./.env when present)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
