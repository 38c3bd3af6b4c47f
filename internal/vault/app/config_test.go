package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "vaultkey", cfg.Issuer)
	require.Equal(t, NotifierLog, cfg.Notifier)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 10*time.Second, cfg.NotifyTimeout)
	require.Equal(t, 3, cfg.NotifyRetries)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "vault.env")
	require.NoError(t, os.WriteFile(file, []byte(
		"VAULT_ISSUER=vault-staging\n"+
			"VAULT_NOTIFIER=queue\n"+
			"VAULT_NOTIFY_TIMEOUT=5s\n"+
			"HOUSEKEEPING_INTERVAL=15\n",
	), 0o600))

	// The real environment wins over the file.
	t.Setenv("VAULT_ISSUER", "vault-prod")
	for _, key := range []string{"VAULT_NOTIFIER", "VAULT_NOTIFY_TIMEOUT", "HOUSEKEEPING_INTERVAL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	require.Equal(t, "vault-prod", cfg.Issuer)
	require.Equal(t, NotifierQueue, cfg.Notifier)
	require.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	require.Equal(t, 15*time.Minute, cfg.HousekeepingInterval)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	base := Config{Notifier: NotifierLog, Port: 8080}
	require.NoError(t, base.Validate())

	nats := base
	nats.Notifier = NotifierNATS
	require.ErrorContains(t, nats.Validate(), "VAULT_NATS_URL")

	nats.NATSURL = "nats://127.0.0.1:4222"
	require.NoError(t, nats.Validate())

	unknown := base
	unknown.Notifier = "pigeon"
	require.ErrorContains(t, unknown.Validate(), "unknown notifier")

	badPort := base
	badPort.Port = 0
	require.Error(t, badPort.Validate())
}
