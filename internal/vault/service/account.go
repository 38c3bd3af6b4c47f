package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
	"github.com/aussiebroadwan/vaultkey/internal/vault/store"
	"github.com/aussiebroadwan/vaultkey/pkg/cryptox"
	"github.com/aussiebroadwan/vaultkey/pkg/idx"
)

// Registration carries the client generated key material of a new account.
// The server never sees the master password, only a proof derived from it.
type Registration struct {
	Email               string
	MasterPasswordProof string
	AccountKey          string
	KeyPair             domain.KeyPair
}

type AccountService struct {
	Store store.Store
}

// Register creates an account. Emails are unique regardless of case.
func (s *AccountService) Register(ctx context.Context, r Registration) (domain.Account, error) {
	hash, err := cryptox.HashSecret(r.MasterPasswordProof)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to hash master password proof: %w", err)
	}

	now := time.Now().UTC()
	a := domain.Account{
		ID:                 idx.New().String(),
		Email:              strings.TrimSpace(r.Email),
		MasterPasswordHash: hash,
		AccountKey:         r.AccountKey,
		KeyPair:            r.KeyPair,
		SecurityStamp:      idx.New().String(),
		RevisionAt:         now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, a); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrEmailTaken
		}
		return domain.Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	return a, nil
}

// GetAccount fetches an account by id.
func (s *AccountService) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	return s.Store.Accounts().GetAccountByID(ctx, accountID)
}
