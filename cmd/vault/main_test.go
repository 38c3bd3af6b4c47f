package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "vault.db")
	t.Setenv("VAULT_DATABASE_FILE", db)
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"migrate"})
	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "at schema version 1 (dirty=false)")

	// Migrating again is a no-op.
	out.Reset()
	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "at schema version 1")
}
