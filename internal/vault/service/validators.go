package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
	"github.com/aussiebroadwan/vaultkey/internal/vault/store"
)

// RotationValidator checks one domain's part of a rotation request against the
// authoritative records and prepares, but does not write, its updates.
type RotationValidator interface {
	Domain() domain.RotationDomain

	// Required lists the ids of the account's records in this domain that
	// currently hold account key material, in store order.
	Required(ctx context.Context, st store.Store, accountID string) ([]string, error)

	// Validate must not write.
	Validate(ctx context.Context, st store.Store, account domain.Account, req *domain.RotationRequest) (*RotationUpdate, error)
}

// RotationUpdate is a validated, not yet persisted, set of replacements for
// one domain.
type RotationUpdate struct {
	Domain    domain.RotationDomain
	RecordIDs []string

	apply func(ctx context.Context, tx store.Tx) error
}

// Apply writes the update inside tx. It fails with store.ErrConflict when the
// domain's required records changed since validation.
func (u *RotationUpdate) Apply(ctx context.Context, tx store.Tx) error {
	if u.apply == nil {
		return nil
	}
	return u.apply(ctx, tx)
}

// DefaultValidators returns one validator per domain that carries account key
// material, in the order their errors are reported.
func DefaultValidators() []RotationValidator {
	return []RotationValidator{
		vaultItemValidator(),
		folderValidator(),
		sendValidator(),
		emergencyAccessValidator(),
		accountRecoveryValidator(),
		passkeyValidator(),
	}
}

// rotator is the shared shape of every domain validator. R is the stored
// record, S the submitted replacement.
type rotator[R, S any] struct {
	domain domain.RotationDomain

	list func(ctx context.Context, st store.Store, accountID string) ([]R, error)
	id   func(R) string

	// keyed reports whether the record currently holds account key
	// material. Records that do not are not required in a rotation.
	keyed func(R) bool

	submitted    func(req *domain.RotationRequest) []S
	submissionID func(S) string

	// emptyField names the first empty replacement field, or "".
	emptyField func(S) string

	persist func(ctx context.Context, tx store.Tx, accountID string, s S) error
}

func (r *rotator[R, S]) Domain() domain.RotationDomain { return r.domain }

func (r *rotator[R, S]) Required(ctx context.Context, st store.Store, accountID string) ([]string, error) {
	records, err := r.list(ctx, st, accountID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.domain, err)
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if r.keyed(rec) {
			ids = append(ids, r.id(rec))
		}
	}
	return ids, nil
}

func (r *rotator[R, S]) Validate(ctx context.Context, st store.Store, account domain.Account, req *domain.RotationRequest) (*RotationUpdate, error) {
	required, err := r.Required(ctx, st, account.ID)
	if err != nil {
		return nil, &PersistenceError{Op: "validate " + string(r.domain), Err: err}
	}

	// Nothing keyed in this domain: whatever was submitted is irrelevant.
	if len(required) == 0 {
		return &RotationUpdate{Domain: r.domain}, nil
	}

	accepted, err := reconcile(r.domain, required, r.submitted(req), r.submissionID, r.emptyField)
	if err != nil {
		return nil, err
	}

	accountID := account.ID
	return &RotationUpdate{
		Domain:    r.domain,
		RecordIDs: required,
		apply: func(ctx context.Context, tx store.Tx) error {
			current, err := r.Required(ctx, tx, accountID)
			if err != nil {
				return err
			}
			if !slices.Equal(current, required) {
				return fmt.Errorf("%s changed since validation: %w", r.domain, store.ErrConflict)
			}

			for _, s := range accepted {
				if err := r.persist(ctx, tx, accountID, s); err != nil {
					return fmt.Errorf("update %s %s: %w", r.domain, r.submissionID(s), err)
				}
			}
			return nil
		},
	}, nil
}

// reconcile matches the submission against the required ids. Every required
// id must be present with non-empty replacement fields. Submitted ids that are
// not required are ignored, and for duplicated ids the first entry wins. The
// result is in required order.
func reconcile[S any](
	d domain.RotationDomain,
	required []string,
	submitted []S,
	id func(S) string,
	emptyField func(S) string,
) ([]S, error) {
	byID := make(map[string]S, len(submitted))
	for _, s := range submitted {
		if _, dup := byID[id(s)]; !dup {
			byID[id(s)] = s
		}
	}

	var missing []string
	accepted := make([]S, 0, len(required))
	for _, rid := range required {
		s, ok := byID[rid]
		if !ok {
			missing = append(missing, rid)
			continue
		}
		accepted = append(accepted, s)
	}
	if len(missing) > 0 {
		return nil, &IncompleteRotationError{Domain: d, MissingIDs: missing}
	}

	for _, s := range accepted {
		if field := emptyField(s); field != "" {
			return nil, &InvalidRotationPayloadError{Domain: d, RecordID: id(s), Field: field}
		}
	}
	return accepted, nil
}

func recordID(r domain.RotatedRecord) string { return r.ID }

func emptyPayload(field string) func(domain.RotatedRecord) string {
	return func(r domain.RotatedRecord) string {
		if r.Payload == "" {
			return field
		}
		return ""
	}
}

func vaultItemValidator() RotationValidator {
	return &rotator[domain.VaultItem, domain.RotatedRecord]{
		domain: domain.DomainVaultItems,
		list: func(ctx context.Context, st store.Store, accountID string) ([]domain.VaultItem, error) {
			return st.VaultItems().ListVaultItemsByAccount(ctx, accountID)
		},
		id: func(it domain.VaultItem) string { return it.ID },
		// Organization items are wrapped under the organization key.
		keyed:        func(it domain.VaultItem) bool { return it.OrganizationID == nil },
		submitted:    func(req *domain.RotationRequest) []domain.RotatedRecord { return req.Items },
		submissionID: recordID,
		emptyField:   emptyPayload("data"),
		persist: func(ctx context.Context, tx store.Tx, accountID string, r domain.RotatedRecord) error {
			return tx.VaultItems().UpdateVaultItemData(ctx, accountID, r.ID, r.Payload)
		},
	}
}

func folderValidator() RotationValidator {
	return &rotator[domain.Folder, domain.RotatedRecord]{
		domain: domain.DomainFolders,
		list: func(ctx context.Context, st store.Store, accountID string) ([]domain.Folder, error) {
			return st.Folders().ListFoldersByAccount(ctx, accountID)
		},
		id:           func(f domain.Folder) string { return f.ID },
		keyed:        func(domain.Folder) bool { return true },
		submitted:    func(req *domain.RotationRequest) []domain.RotatedRecord { return req.Folders },
		submissionID: recordID,
		emptyField:   emptyPayload("name"),
		persist: func(ctx context.Context, tx store.Tx, accountID string, r domain.RotatedRecord) error {
			return tx.Folders().UpdateFolderName(ctx, accountID, r.ID, r.Payload)
		},
	}
}

func sendValidator() RotationValidator {
	return &rotator[domain.Send, domain.RotatedRecord]{
		domain: domain.DomainSends,
		list: func(ctx context.Context, st store.Store, accountID string) ([]domain.Send, error) {
			return st.Sends().ListSendsByAccount(ctx, accountID)
		},
		id:           func(s domain.Send) string { return s.ID },
		keyed:        func(domain.Send) bool { return true },
		submitted:    func(req *domain.RotationRequest) []domain.RotatedRecord { return req.Sends },
		submissionID: recordID,
		emptyField:   emptyPayload("key"),
		persist: func(ctx context.Context, tx store.Tx, accountID string, r domain.RotatedRecord) error {
			return tx.Sends().UpdateSendKey(ctx, accountID, r.ID, r.Payload)
		},
	}
}

func emergencyAccessValidator() RotationValidator {
	return &rotator[domain.EmergencyAccess, domain.RotatedRecord]{
		domain: domain.DomainEmergencyAccess,
		list: func(ctx context.Context, st store.Store, accountID string) ([]domain.EmergencyAccess, error) {
			return st.EmergencyAccess().ListEmergencyAccessByGrantor(ctx, accountID)
		},
		id: func(ea domain.EmergencyAccess) string { return ea.ID },
		// Grants that were never confirmed hold no wrapped key.
		keyed:        func(ea domain.EmergencyAccess) bool { return ea.KeyEncrypted != nil && *ea.KeyEncrypted != "" },
		submitted:    func(req *domain.RotationRequest) []domain.RotatedRecord { return req.EmergencyAccess },
		submissionID: recordID,
		emptyField:   emptyPayload("key_encrypted"),
		persist: func(ctx context.Context, tx store.Tx, accountID string, r domain.RotatedRecord) error {
			return tx.EmergencyAccess().UpdateEmergencyAccessKey(ctx, accountID, r.ID, r.Payload)
		},
	}
}

func accountRecoveryValidator() RotationValidator {
	return &rotator[domain.OrganizationMembership, domain.RotatedRecord]{
		domain: domain.DomainAccountRecovery,
		list: func(ctx context.Context, st store.Store, accountID string) ([]domain.OrganizationMembership, error) {
			return st.AccountRecovery().ListMembershipsByAccount(ctx, accountID)
		},
		id: func(m domain.OrganizationMembership) string { return m.ID },
		// Members not enrolled in account recovery hold no wrapped key.
		keyed: func(m domain.OrganizationMembership) bool {
			return m.ResetPasswordKey != nil && *m.ResetPasswordKey != ""
		},
		submitted:    func(req *domain.RotationRequest) []domain.RotatedRecord { return req.AccountRecovery },
		submissionID: recordID,
		emptyField:   emptyPayload("reset_password_key"),
		persist: func(ctx context.Context, tx store.Tx, accountID string, r domain.RotatedRecord) error {
			return tx.AccountRecovery().UpdateResetPasswordKey(ctx, accountID, r.ID, r.Payload)
		},
	}
}

func passkeyValidator() RotationValidator {
	return &rotator[domain.PasskeyCredential, domain.RotatedPasskey]{
		domain: domain.DomainPasskeys,
		list: func(ctx context.Context, st store.Store, accountID string) ([]domain.PasskeyCredential, error) {
			return st.Passkeys().ListPasskeysByAccount(ctx, accountID)
		},
		id:           func(p domain.PasskeyCredential) string { return p.ID },
		keyed:        domain.PasskeyCredential.PRFEnabled,
		submitted:    func(req *domain.RotationRequest) []domain.RotatedPasskey { return req.Passkeys },
		submissionID: func(p domain.RotatedPasskey) string { return p.ID },
		emptyField: func(p domain.RotatedPasskey) string {
			switch {
			case p.EncryptedUserKey == "":
				return "encrypted_user_key"
			case p.EncryptedPublicKey == "":
				return "encrypted_public_key"
			}
			return ""
		},
		persist: func(ctx context.Context, tx store.Tx, accountID string, p domain.RotatedPasskey) error {
			return tx.Passkeys().UpdatePasskeyPRFKeys(ctx, accountID, p.ID, p.EncryptedUserKey, p.EncryptedPublicKey)
		},
	}
}
