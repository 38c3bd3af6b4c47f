package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
)

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, q querier, scan func(*sql.Rows) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func now() int64 { return toNanos(time.Now()) }

/* Vault items */

type vaultItemsRepo struct {
	q querier
}

func (r *vaultItemsRepo) CreateVaultItem(ctx context.Context, it domain.VaultItem) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO vault_items (id, account_id, organization_id, folder_id, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		it.ID, it.AccountID, toNullString(it.OrganizationID), toNullString(it.FolderID), it.Data, now(),
	)
	return mapConstraint(err)
}

func (r *vaultItemsRepo) ListVaultItemsByAccount(ctx context.Context, accountID string) ([]domain.VaultItem, error) {
	return queryAll(ctx, r.q, func(rows *sql.Rows) (domain.VaultItem, error) {
		var (
			it          domain.VaultItem
			org, folder sql.NullString
		)
		err := rows.Scan(&it.ID, &it.AccountID, &org, &folder, &it.Data)
		it.OrganizationID = fromNullString(org)
		it.FolderID = fromNullString(folder)
		return it, err
	}, `SELECT id, account_id, organization_id, folder_id, data FROM vault_items WHERE account_id = ? ORDER BY id`, accountID)
}

func (r *vaultItemsRepo) UpdateVaultItemData(ctx context.Context, accountID, id, data string) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE vault_items SET data = ?, updated_at = ? WHERE id = ? AND account_id = ?`,
		data, now(), id, accountID,
	))
}

/* Folders */

type foldersRepo struct {
	q querier
}

func (r *foldersRepo) CreateFolder(ctx context.Context, f domain.Folder) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO folders (id, account_id, name, updated_at) VALUES (?, ?, ?, ?)`,
		f.ID, f.AccountID, f.Name, now(),
	)
	return mapConstraint(err)
}

func (r *foldersRepo) ListFoldersByAccount(ctx context.Context, accountID string) ([]domain.Folder, error) {
	return queryAll(ctx, r.q, func(rows *sql.Rows) (domain.Folder, error) {
		var f domain.Folder
		err := rows.Scan(&f.ID, &f.AccountID, &f.Name)
		return f, err
	}, `SELECT id, account_id, name FROM folders WHERE account_id = ? ORDER BY id`, accountID)
}

func (r *foldersRepo) UpdateFolderName(ctx context.Context, accountID, id, name string) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE folders SET name = ?, updated_at = ? WHERE id = ? AND account_id = ?`,
		name, now(), id, accountID,
	))
}

/* Sends */

type sendsRepo struct {
	q querier
}

func (r *sendsRepo) CreateSend(ctx context.Context, s domain.Send) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sends (id, account_id, key, updated_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.AccountID, s.Key, now(),
	)
	return mapConstraint(err)
}

func (r *sendsRepo) ListSendsByAccount(ctx context.Context, accountID string) ([]domain.Send, error) {
	return queryAll(ctx, r.q, func(rows *sql.Rows) (domain.Send, error) {
		var s domain.Send
		err := rows.Scan(&s.ID, &s.AccountID, &s.Key)
		return s, err
	}, `SELECT id, account_id, key FROM sends WHERE account_id = ? ORDER BY id`, accountID)
}

func (r *sendsRepo) UpdateSendKey(ctx context.Context, accountID, id, key string) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE sends SET key = ?, updated_at = ? WHERE id = ? AND account_id = ?`,
		key, now(), id, accountID,
	))
}

/* Emergency access */

type emergencyAccessRepo struct {
	q querier
}

func (r *emergencyAccessRepo) CreateEmergencyAccess(ctx context.Context, ea domain.EmergencyAccess) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO emergency_access (id, grantor_id, grantee_id, email, key_encrypted, status, type, wait_time_days, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ea.ID, ea.GrantorID, toNullString(ea.GranteeID), ea.Email, toNullString(ea.KeyEncrypted),
		string(ea.Status), string(ea.Type), ea.WaitTimeDays, now(),
	)
	return mapConstraint(err)
}

func (r *emergencyAccessRepo) ListEmergencyAccessByGrantor(ctx context.Context, grantorID string) ([]domain.EmergencyAccess, error) {
	return queryAll(ctx, r.q, func(rows *sql.Rows) (domain.EmergencyAccess, error) {
		var (
			ea           domain.EmergencyAccess
			grantee, key sql.NullString
			status, typ  string
		)
		err := rows.Scan(&ea.ID, &ea.GrantorID, &grantee, &ea.Email, &key, &status, &typ, &ea.WaitTimeDays)
		ea.GranteeID = fromNullString(grantee)
		ea.KeyEncrypted = fromNullString(key)
		ea.Status = domain.EmergencyAccessStatus(status)
		ea.Type = domain.EmergencyAccessType(typ)
		return ea, err
	}, `SELECT id, grantor_id, grantee_id, email, key_encrypted, status, type, wait_time_days
		FROM emergency_access WHERE grantor_id = ? ORDER BY id`, grantorID)
}

func (r *emergencyAccessRepo) UpdateEmergencyAccessKey(ctx context.Context, grantorID, id, keyEncrypted string) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE emergency_access SET key_encrypted = ?, updated_at = ? WHERE id = ? AND grantor_id = ?`,
		keyEncrypted, now(), id, grantorID,
	))
}

/* Account recovery */

type accountRecoveryRepo struct {
	q querier
}

func (r *accountRecoveryRepo) CreateMembership(ctx context.Context, m domain.OrganizationMembership) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO organization_memberships (id, organization_id, account_id, reset_password_key, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.OrganizationID, m.AccountID, toNullString(m.ResetPasswordKey), now(),
	)
	return mapConstraint(err)
}

func (r *accountRecoveryRepo) ListMembershipsByAccount(ctx context.Context, accountID string) ([]domain.OrganizationMembership, error) {
	return queryAll(ctx, r.q, func(rows *sql.Rows) (domain.OrganizationMembership, error) {
		var (
			m   domain.OrganizationMembership
			key sql.NullString
		)
		err := rows.Scan(&m.ID, &m.OrganizationID, &m.AccountID, &key)
		m.ResetPasswordKey = fromNullString(key)
		return m, err
	}, `SELECT id, organization_id, account_id, reset_password_key
		FROM organization_memberships WHERE account_id = ? ORDER BY id`, accountID)
}

func (r *accountRecoveryRepo) UpdateResetPasswordKey(ctx context.Context, accountID, id, key string) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE organization_memberships SET reset_password_key = ?, updated_at = ? WHERE id = ? AND account_id = ?`,
		key, now(), id, accountID,
	))
}

/* Passkeys */

type passkeysRepo struct {
	q querier
}

func (r *passkeysRepo) CreatePasskey(ctx context.Context, p domain.PasskeyCredential) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO passkey_credentials
			(id, account_id, name, supports_prf, encrypted_user_key, encrypted_public_key, encrypted_private_key, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AccountID, p.Name, p.SupportsPRF,
		toNullString(p.EncryptedUserKey), toNullString(p.EncryptedPublicKey), toNullString(p.EncryptedPrivateKey), now(),
	)
	return mapConstraint(err)
}

func (r *passkeysRepo) ListPasskeysByAccount(ctx context.Context, accountID string) ([]domain.PasskeyCredential, error) {
	return queryAll(ctx, r.q, func(rows *sql.Rows) (domain.PasskeyCredential, error) {
		var (
			p                      domain.PasskeyCredential
			userKey, pubKey, privK sql.NullString
		)
		err := rows.Scan(&p.ID, &p.AccountID, &p.Name, &p.SupportsPRF, &userKey, &pubKey, &privK)
		p.EncryptedUserKey = fromNullString(userKey)
		p.EncryptedPublicKey = fromNullString(pubKey)
		p.EncryptedPrivateKey = fromNullString(privK)
		return p, err
	}, `SELECT id, account_id, name, supports_prf, encrypted_user_key, encrypted_public_key, encrypted_private_key
		FROM passkey_credentials WHERE account_id = ? ORDER BY id`, accountID)
}

func (r *passkeysRepo) UpdatePasskeyPRFKeys(ctx context.Context, accountID, id, userKey, publicKey string) error {
	return expectOne(r.q.ExecContext(ctx, `
		UPDATE passkey_credentials
		SET encrypted_user_key = ?, encrypted_public_key = ?, updated_at = ?
		WHERE id = ? AND account_id = ?`,
		userKey, publicKey, now(), id, accountID,
	))
}
