package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/vaultkey/internal/vault/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the outer Store owns the database.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations run before any transaction starts.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Accounts() store.Accounts               { return &accountsRepo{q: t.tx} }
func (t *txStore) Sessions() store.Sessions               { return &sessionsRepo{q: t.tx} }
func (t *txStore) VaultItems() store.VaultItems           { return &vaultItemsRepo{q: t.tx} }
func (t *txStore) Folders() store.Folders                 { return &foldersRepo{q: t.tx} }
func (t *txStore) Sends() store.Sends                     { return &sendsRepo{q: t.tx} }
func (t *txStore) EmergencyAccess() store.EmergencyAccess { return &emergencyAccessRepo{q: t.tx} }
func (t *txStore) AccountRecovery() store.AccountRecovery { return &accountRecoveryRepo{q: t.tx} }
func (t *txStore) Passkeys() store.Passkeys               { return &passkeysRepo{q: t.tx} }
