package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
	"github.com/aussiebroadwan/vaultkey/internal/vault/store"
)

type TOTPService struct {
	Store  store.Store
	Issuer string // shown in authenticator apps
}

// Enroll generates a TOTP secret for the account. The factor is not enforced
// until Verify succeeds; enrolling again before that replaces the secret.
func (s *TOTPService) Enroll(ctx context.Context, accountID string) (domain.TOTPEnrollment, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("failed to load account: %w", err)
	}
	if account.TOTPEnabled() {
		return domain.TOTPEnrollment{}, ErrTOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: account.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	if err := s.Store.Accounts().UpdateTOTPSecret(ctx, accountID, key.Secret()); err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	return domain.TOTPEnrollment{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  s.Issuer,
		Account: account.Email,
	}, nil
}

// Verify enables TOTP once the account proves it holds the secret.
func (s *TOTPService) Verify(ctx context.Context, accountID, code string) error {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	switch {
	case account.TOTPEnabled():
		return ErrTOTPAlreadyEnabled
	case account.TOTPSecret == nil:
		return ErrTOTPNotEnrolled
	case !totp.Validate(code, *account.TOTPSecret):
		return ErrInvalidTOTPCode
	}

	err = s.Store.Accounts().EnableTOTP(ctx, accountID, time.Now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return ErrTOTPNotEnrolled
	}
	return err
}
