//go:build e2e

package vault_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/vaultkey/pkg/vaultsdk"
)

func TestHealth(t *testing.T) {
	c := setupVaultContainer(t)

	live, err := c.Livez(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := c.Readyz(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks["database"])

	set, err := c.JWKS(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, set.Keys)
}

func TestRotationEndsOtherSessions(t *testing.T) {
	c := setupVaultContainer(t)
	sessions := registerAndLogin(t, c, "alice@example.test", "laptop", "phone")
	laptop, phone := sessions[0], sessions[1]

	manifest, err := laptop.RotationManifest(t.Context())
	require.NoError(t, err)
	for domain, ids := range manifest.Domains {
		require.Empty(t, ids, domain)
	}

	res, err := laptop.RotateAccountKey(t.Context(), vaultsdk.RotateKeyRequest{
		MasterPasswordProof: testProof,
		AccountKey:          "account-key-v2",
		KeyPair:             vaultsdk.KeyPair{PublicKey: "pub-v2", EncryptedPrivateKey: "priv-v2"},
	})
	require.NoError(t, err)
	require.Equal(t, laptop.AccountID, res.AccountID)

	keys, err := laptop.Keys(t.Context())
	require.NoError(t, err)
	require.Equal(t, "account-key-v2", keys.AccountKey)
	require.Greater(t, keys.Revision, manifest.Revision)

	_, err = phone.Keys(t.Context())
	require.ErrorIs(t, err, vaultsdk.ErrInvalidToken)

	// The rotated key pair is what a fresh login sees.
	again, err := c.Login(t.Context(), vaultsdk.LoginRequest{Email: "alice@example.test", MasterPasswordProof: testProof})
	require.NoError(t, err)
	keys, err = again.Keys(t.Context())
	require.NoError(t, err)
	require.Equal(t, "pub-v2", keys.KeyPair.PublicKey)
}

func TestRotationRejections(t *testing.T) {
	c := setupVaultContainer(t)
	sess := registerAndLogin(t, c, "bob@example.test", "laptop")[0]

	_, err := sess.RotateAccountKey(t.Context(), vaultsdk.RotateKeyRequest{
		MasterPasswordProof: "wrong",
		AccountKey:          "account-key-v2",
		KeyPair:             vaultsdk.KeyPair{PublicKey: "pub-v2", EncryptedPrivateKey: "priv-v2"},
	})
	require.ErrorIs(t, err, vaultsdk.ErrInvalidCredentials)

	_, err = sess.RotateAccountKey(t.Context(), vaultsdk.RotateKeyRequest{
		MasterPasswordProof: testProof,
		KeyPair:             vaultsdk.KeyPair{PublicKey: "pub-v2", EncryptedPrivateKey: "priv-v2"},
	})
	var apiErr *vaultsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, vaultsdk.ErrorCodeInvalidRotationPayload, apiErr.Code)
	require.Equal(t, "account_key", apiErr.Problems[0].Field)

	// Neither attempt changed anything.
	keys, err := sess.Keys(t.Context())
	require.NoError(t, err)
	require.Equal(t, "account-key-v1", keys.AccountKey)
	require.Nil(t, keys.LastKeyRotationAt)
}

func TestLogout(t *testing.T) {
	c := setupVaultContainer(t)
	sess := registerAndLogin(t, c, "carol@example.test", "laptop")[0]

	require.NoError(t, sess.Logout(t.Context()))
	_, err := sess.Keys(t.Context())
	require.ErrorIs(t, err, vaultsdk.ErrInvalidToken)
}
