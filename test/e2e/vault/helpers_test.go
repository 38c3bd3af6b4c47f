//go:build e2e

package vault_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/vaultkey/pkg/vaultsdk"
)

const (
	testImageName = "vaultkey-test:latest"

	testProof = "e2e-proof-v1"
)

// TestMain builds the service image once for all tests.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Vault Service Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Vault Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/vault/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// setupVaultContainer starts the service and returns a client for it. Rate
// limits are raised so tests can log in repeatedly.
func setupVaultContainer(t *testing.T) *vaultsdk.Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"VAULT_ISSUER":                      "vault-e2e",
			"VAULT_NUM_KEYS":                    "1",
			"ENV":                               "test",
			"LOG_LEVEL":                         "info",
			"LOG_FORMAT":                        "json",
			"VAULT_RATELIMIT_STRICT_REQUESTS":   "1000",
			"VAULT_RATELIMIT_STRICT_WINDOW_SEC": "60",
			"VAULT_RATELIMIT_STRICT_BURST":      "1000",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return vaultsdk.New(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()))
}

func registerAndLogin(t *testing.T, c *vaultsdk.Client, email string, devices ...string) []*vaultsdk.Session {
	t.Helper()

	_, err := c.Register(t.Context(), vaultsdk.RegisterRequest{
		Email:               email,
		MasterPasswordProof: testProof,
		AccountKey:          "account-key-v1",
		KeyPair:             vaultsdk.KeyPair{PublicKey: "pub-v1", EncryptedPrivateKey: "priv-v1"},
	})
	require.NoError(t, err)

	sessions := make([]*vaultsdk.Session, 0, len(devices))
	for _, d := range devices {
		s, err := c.Login(t.Context(), vaultsdk.LoginRequest{Email: email, MasterPasswordProof: testProof, Device: d})
		require.NoError(t, err)
		sessions = append(sessions, s)
	}
	return sessions
}
