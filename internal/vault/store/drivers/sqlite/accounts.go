package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
	"github.com/aussiebroadwan/vaultkey/internal/vault/store"
)

type accountsRepo struct {
	q querier
}

const accountColumns = `id, email, master_password_hash, account_key, public_key, private_key_encrypted,
	totp_secret, totp_enabled_at, security_stamp, last_key_rotation_at, revision, created_at, updated_at`

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		a                          domain.Account
		totpSecret                 sql.NullString
		totpEnabledAt, lastRotated sql.NullInt64
		revision, created, updated int64
	)
	err := row.Scan(
		&a.ID, &a.Email, &a.MasterPasswordHash, &a.AccountKey,
		&a.KeyPair.PublicKey, &a.KeyPair.EncryptedPrivateKey,
		&totpSecret, &totpEnabledAt, &a.SecurityStamp, &lastRotated,
		&revision, &created, &updated,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.TOTPSecret = fromNullString(totpSecret)
	a.TOTPEnabledAt = fromNullNanos(totpEnabledAt)
	a.LastKeyRotationAt = fromNullNanos(lastRotated)
	a.RevisionAt = fromNanos(revision)
	a.CreatedAt = fromNanos(created)
	a.UpdatedAt = fromNanos(updated)
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return scanAccount(r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return scanAccount(r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email))
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.RevisionAt.IsZero() {
		a.RevisionAt = a.CreatedAt
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.MasterPasswordHash, a.AccountKey,
		a.KeyPair.PublicKey, a.KeyPair.EncryptedPrivateKey,
		toNullString(a.TOTPSecret), toNullNanos(a.TOTPEnabledAt), a.SecurityStamp,
		toNullNanos(a.LastKeyRotationAt), toNanos(a.RevisionAt), toNanos(a.CreatedAt), toNanos(a.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) ReplaceAccountKeys(ctx context.Context, accountID string, expectedRevision time.Time, u domain.AccountKeyUpdate) error {
	err := expectOne(r.q.ExecContext(ctx, `
		UPDATE accounts
		SET account_key = ?, public_key = ?, private_key_encrypted = ?,
			security_stamp = ?, last_key_rotation_at = ?, revision = ?, updated_at = ?
		WHERE id = ? AND revision = ?`,
		u.AccountKey, u.KeyPair.PublicKey, u.KeyPair.EncryptedPrivateKey,
		u.SecurityStamp, toNanos(u.LastKeyRotationAt), toNanos(u.RevisionAt), toNanos(u.LastKeyRotationAt),
		accountID, toNanos(expectedRevision),
	))
	if !errors.Is(err, store.ErrConflict) {
		return err
	}

	// Tell a vanished account apart from a lost race.
	if _, getErr := r.GetAccountByID(ctx, accountID); getErr != nil {
		return getErr
	}
	return store.ErrConflict
}

func (r *accountsRepo) UpdateTOTPSecret(ctx context.Context, accountID, secret string) error {
	err := expectOne(r.q.ExecContext(ctx,
		`UPDATE accounts SET totp_secret = ?, totp_enabled_at = NULL, updated_at = ? WHERE id = ?`,
		secret, toNanos(time.Now()), accountID,
	))
	if errors.Is(err, store.ErrConflict) {
		return store.ErrNotFound
	}
	return err
}

func (r *accountsRepo) EnableTOTP(ctx context.Context, accountID string, at time.Time) error {
	err := expectOne(r.q.ExecContext(ctx,
		`UPDATE accounts SET totp_enabled_at = ?, updated_at = ? WHERE id = ? AND totp_secret IS NOT NULL`,
		toNanos(at), toNanos(at), accountID,
	))
	if errors.Is(err, store.ErrConflict) {
		return store.ErrNotFound
	}
	return err
}
