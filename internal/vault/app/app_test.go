package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/vaultkey/internal/vault/notify"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	dir := t.TempDir()
	return Config{
		Issuer:               "vault-test",
		NumKeys:              1,
		DatabaseFile:         filepath.Join(dir, "vault.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		Notifier:             NotifierLog,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		Port:                 8080,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func TestNewWiresEverything(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	require.IsType(t, notify.LogNotifier{}, app.notifier)
	require.Nil(t, app.queueServer)
	require.Same(t, app.metrics, app.keyRotationService.Metrics)

	for _, path := range []string{"/livez", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestNewQueueNotifier(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notifier = NotifierQueue
	cfg.QueueConcurrency = 2

	// asynq connects lazily, so no broker is needed to wire the queue.
	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.queueClient.Close()
		_ = app.db.Close()
	})

	require.IsType(t, &notify.QueueNotifier{}, app.notifier)
	require.NotNil(t, app.queueServer)
	require.NotNil(t, app.queueMux)
}
