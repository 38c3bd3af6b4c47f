package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/vaultkey/pkg/jwtx"
)

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	sessions := newSessionService(t, st)
	a := registerAccount(t, st, "bob@example.test")

	t.Run("issues a verifiable token bound to the session", func(t *testing.T) {
		res := login(t, sessions, "bob@example.test", "laptop")
		require.Equal(t, a.ID, res.Session.AccountID)
		require.Equal(t, a.SecurityStamp, res.Session.SecurityStamp)
		require.EqualValues(t, jwtx.DefaultAccessTokenTTL.Seconds(), res.ExpiresIn)

		claims, err := sessions.KeyManager.Verifier.Verify(res.AccessToken)
		require.NoError(t, err)
		require.Equal(t, a.ID, claims.Subject)
		require.Equal(t, res.Session.ID, claims.SID)
		require.Equal(t, []string{jwtx.AMRPassword}, claims.AMR)

		require.NoError(t, sessions.CheckSession(ctx, a.ID, res.Session.ID))
	})

	t.Run("rejects wrong proof and unknown email alike", func(t *testing.T) {
		_, err := sessions.Login(ctx, Credentials{Email: "bob@example.test", MasterPasswordProof: "nope"})
		require.ErrorIs(t, err, ErrAuthenticationFailed)

		_, err = sessions.Login(ctx, Credentials{Email: "nobody@example.test", MasterPasswordProof: testProof})
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}

func TestLoginRequiresTOTPOnceEnabled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	sessions := newSessionService(t, st)
	a := registerAccount(t, st, "carol@example.test")

	enr, err := (&TOTPService{Store: st, Issuer: "Vault"}).Enroll(ctx, a.ID)
	require.NoError(t, err)
	code, err := totp.GenerateCode(enr.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, (&TOTPService{Store: st}).Verify(ctx, a.ID, code))

	_, err = sessions.Login(ctx, Credentials{Email: a.Email, MasterPasswordProof: testProof})
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	code, err = totp.GenerateCode(enr.Secret, time.Now())
	require.NoError(t, err)
	res, err := sessions.Login(ctx, Credentials{Email: a.Email, MasterPasswordProof: testProof, OTP: code})
	require.NoError(t, err)

	claims, err := sessions.KeyManager.Verifier.Verify(res.AccessToken)
	require.NoError(t, err)
	require.Contains(t, claims.AMR, jwtx.AMRMFA)
}

func TestCheckSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	sessions := newSessionService(t, st)
	a := registerAccount(t, st, "dave@example.test")
	other := registerAccount(t, st, "erin@example.test")
	res := login(t, sessions, a.Email, "")

	require.ErrorIs(t, sessions.CheckSession(ctx, a.ID, "missing"), ErrSessionInvalid)
	require.ErrorIs(t, sessions.CheckSession(ctx, other.ID, res.Session.ID), ErrSessionInvalid)

	require.ErrorIs(t, sessions.Logout(ctx, other.ID, res.Session.ID), ErrSessionInvalid)
	require.NoError(t, sessions.Logout(ctx, a.ID, res.Session.ID))
	require.NoError(t, sessions.Logout(ctx, a.ID, res.Session.ID))
	require.ErrorIs(t, sessions.CheckSession(ctx, a.ID, res.Session.ID), ErrSessionInvalid)
}

func TestTOTPEnrollment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TOTPService{Store: st, Issuer: "Vault"}
	a := registerAccount(t, st, "frank@example.test")

	require.ErrorIs(t, svc.Verify(ctx, a.ID, "123456"), ErrTOTPNotEnrolled)

	enr, err := svc.Enroll(ctx, a.ID)
	require.NoError(t, err)
	require.NotEmpty(t, enr.Secret)
	require.Contains(t, enr.URL, "otpauth://totp/")
	require.Equal(t, a.Email, enr.Account)

	require.ErrorIs(t, svc.Verify(ctx, a.ID, "000000x"), ErrInvalidTOTPCode)

	code, err := totp.GenerateCode(enr.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.Verify(ctx, a.ID, code))

	_, err = svc.Enroll(ctx, a.ID)
	require.ErrorIs(t, err, ErrTOTPAlreadyEnabled)
	require.ErrorIs(t, svc.Verify(ctx, a.ID, code), ErrTOTPAlreadyEnabled)
}
