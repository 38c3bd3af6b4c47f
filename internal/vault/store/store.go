package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned when a conditional write matched no row: the
	// record changed (or vanished) since it was read.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Drivers implement it and expose
// sub-repositories per table family. Repositories obtained from a Tx run inside
// that transaction.
type Store interface {
	Accounts() Accounts
	Sessions() Sessions
	VaultItems() VaultItems
	Folders() Folders
	Sends() Sends
	EmergencyAccess() EmergencyAccess
	AccountRecovery() AccountRecovery
	Passkeys() Passkeys

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account; duplicate emails yield ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	// ReplaceAccountKeys swaps the key material, security stamp and revision
	// in one conditional write. It returns ErrConflict when the stored revision
	// no longer equals expectedRevision.
	ReplaceAccountKeys(ctx context.Context, accountID string, expectedRevision time.Time, u domain.AccountKeyUpdate) error

	UpdateTOTPSecret(ctx context.Context, accountID, secret string) error
	EnableTOTP(ctx context.Context, accountID string, at time.Time) error
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSessionByID(ctx context.Context, id string) (domain.Session, error)

	// RestampSession copies a new security stamp onto one session so it
	// survives the stamp change it initiated.
	RestampSession(ctx context.Context, id, stamp string) error

	RevokeSession(ctx context.Context, id string, at time.Time) error

	// DeleteStaleSessions removes expired and revoked sessions as well as
	// those whose stamp no longer matches their account.
	DeleteStaleSessions(ctx context.Context, now time.Time) (int64, error)
}

// The domain repositories below list records in id order and update a single
// record's key material. Updates are scoped to the owning account and return
// ErrConflict when no row matched.

type VaultItems interface {
	CreateVaultItem(ctx context.Context, it domain.VaultItem) error
	ListVaultItemsByAccount(ctx context.Context, accountID string) ([]domain.VaultItem, error)
	UpdateVaultItemData(ctx context.Context, accountID, id, data string) error
}

type Folders interface {
	CreateFolder(ctx context.Context, f domain.Folder) error
	ListFoldersByAccount(ctx context.Context, accountID string) ([]domain.Folder, error)
	UpdateFolderName(ctx context.Context, accountID, id, name string) error
}

type Sends interface {
	CreateSend(ctx context.Context, s domain.Send) error
	ListSendsByAccount(ctx context.Context, accountID string) ([]domain.Send, error)
	UpdateSendKey(ctx context.Context, accountID, id, key string) error
}

type EmergencyAccess interface {
	CreateEmergencyAccess(ctx context.Context, ea domain.EmergencyAccess) error
	ListEmergencyAccessByGrantor(ctx context.Context, grantorID string) ([]domain.EmergencyAccess, error)
	UpdateEmergencyAccessKey(ctx context.Context, grantorID, id, keyEncrypted string) error
}

type AccountRecovery interface {
	CreateMembership(ctx context.Context, m domain.OrganizationMembership) error
	ListMembershipsByAccount(ctx context.Context, accountID string) ([]domain.OrganizationMembership, error)
	UpdateResetPasswordKey(ctx context.Context, accountID, id, key string) error
}

type Passkeys interface {
	CreatePasskey(ctx context.Context, p domain.PasskeyCredential) error
	ListPasskeysByAccount(ctx context.Context, accountID string) ([]domain.PasskeyCredential, error)
	UpdatePasskeyPRFKeys(ctx context.Context, accountID, id, userKey, publicKey string) error
}
