package cryptox_test

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/aussiebroadwan/vaultkey/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateEd25519KeySignsAndVerifies(t *testing.T) {
	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	block, rest := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Empty(t, rest)
	require.Equal(t, "PRIVATE KEY", block.Type)

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	priv, ok := parsed.(ed25519.PrivateKey)
	require.True(t, ok, "expected an Ed25519 key, got %T", parsed)

	msg := []byte("rotation notice")
	sig := ed25519.Sign(priv, msg)
	require.True(t, ed25519.Verify(priv.Public().(ed25519.PublicKey), msg, sig))
}

func TestGenerateEd25519KeyIsFresh(t *testing.T) {
	a, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	b, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
