package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
	"github.com/aussiebroadwan/vaultkey/internal/vault/store"
	"github.com/aussiebroadwan/vaultkey/pkg/cryptox"
	"github.com/aussiebroadwan/vaultkey/pkg/idx"
	"github.com/aussiebroadwan/vaultkey/pkg/jwtx"
)

const DefaultSessionTTL = 30 * 24 * time.Hour

type Credentials struct {
	Email               string
	MasterPasswordProof string
	OTP                 string
	Device              string
}

type LoginResult struct {
	AccessToken string
	ExpiresIn   int64 // seconds
	Session     domain.Session
	Account     domain.Account
}

// SessionService issues sessions and checks them on every authenticated
// request. A session carries the account's security stamp at creation time
// and dies as soon as the account's stamp moves on.
type SessionService struct {
	Store      store.Store
	KeyManager *jwtx.KeyManager
	Issuer     string
	Audience   []string
	SessionTTL time.Duration
	TokenTTL   time.Duration
}

// Login verifies the credentials, opens a session and signs an access token
// for it.
func (s *SessionService) Login(ctx context.Context, c Credentials) (LoginResult, error) {
	account, err := s.Store.Accounts().GetAccountByEmail(ctx, c.Email)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, ErrAuthenticationFailed
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to load account: %w", err)
	}

	if err := cryptox.VerifySecret(c.MasterPasswordProof, account.MasterPasswordHash); err != nil {
		return LoginResult{}, ErrAuthenticationFailed
	}

	amr := []string{jwtx.AMRPassword}
	if account.TOTPEnabled() {
		if c.OTP == "" || !totp.Validate(c.OTP, *account.TOTPSecret) {
			return LoginResult{}, ErrAuthenticationFailed
		}
		amr = append(amr, jwtx.AMROTP, jwtx.AMRMFA)
	}

	now := time.Now().UTC()
	sess := domain.Session{
		ID:            idx.NewAt(now).String(),
		AccountID:     account.ID,
		Device:        c.Device,
		SecurityStamp: account.SecurityStamp,
		ExpiresAt:     now.Add(s.sessionTTL()),
		CreatedAt:     now,
	}
	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		return LoginResult{}, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.signAccessToken(account.ID, sess.ID, amr, now)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken: token,
		ExpiresIn:   int64(s.tokenTTL().Seconds()),
		Session:     sess,
		Account:     account,
	}, nil
}

// CheckSession fails with ErrSessionInvalid unless sessionID is a live
// session of accountID whose stamp still matches the account.
func (s *SessionService) CheckSession(ctx context.Context, accountID, sessionID string) error {
	if _, err := idx.Parse(sessionID); err != nil {
		return ErrSessionInvalid
	}

	sess, err := s.Store.Sessions().GetSessionByID(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionInvalid
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionInvalid
	}
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	if !sess.ValidFor(account, time.Now()) {
		return ErrSessionInvalid
	}
	return nil
}

// Logout revokes a session. Revoking an unknown or foreign session is an
// error; revoking twice is not.
func (s *SessionService) Logout(ctx context.Context, accountID, sessionID string) error {
	sess, err := s.Store.Sessions().GetSessionByID(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && sess.AccountID != accountID) {
		return ErrSessionInvalid
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if sess.RevokedAt != nil {
		return nil
	}
	return s.Store.Sessions().RevokeSession(ctx, sessionID, time.Now().UTC())
}

func (s *SessionService) signAccessToken(accountID, sessionID string, amr []string, now time.Time) (string, error) {
	if s.KeyManager == nil || s.KeyManager.NumSigners() == 0 {
		return "", errors.New("no signing key available")
	}

	claims := jwtx.NewAccessClaims(accountID, sessionID, amr, s.tokenTTL(), s.Issuer, s.Audience, now)
	token, err := s.KeyManager.Signer().Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

func (s *SessionService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

func (s *SessionService) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return jwtx.DefaultAccessTokenTTL
}
