package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/vaultkey/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewEphemeralKeyManager(t *testing.T) {
	tests := []struct {
		name    string
		numKeys int
		want    int
	}{
		{"default", 0, 3},
		{"single", 1, 1},
		{"capped", 50, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer, NumKeys: tt.numKeys})
			require.NoError(t, err)
			require.True(t, km.IsReady())
			require.Equal(t, tt.want, km.NumSigners())
			require.Len(t, km.KeySet.PublicJWKS().Keys, tt.want)
		})
	}
}

func TestKeyManagerRequiresIssuer(t *testing.T) {
	_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{})
	require.Error(t, err)
}

func TestKeyManagerRoundTripAcrossKeys(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer, Audience: []string{"vault"}})
	require.NoError(t, err)

	for range 20 {
		claims := jwtx.NewAccessClaims("acct", "sess", nil, time.Minute, testIssuer, []string{"vault"}, time.Now().UTC())
		token, err := km.Signer().Sign(claims)
		require.NoError(t, err)

		got, err := km.Verifier.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "sess", got.SID)
	}
}
