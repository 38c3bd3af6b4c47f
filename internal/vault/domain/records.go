package domain

// VaultItem is an encrypted vault entry. Items owned by an organization are
// wrapped under the organization key, not the account key.
type VaultItem struct {
	ID             string
	AccountID      string
	OrganizationID *string
	FolderID       *string
	Data           string
}

type Folder struct {
	ID        string
	AccountID string
	Name      string // encrypted
}

// Send is an ephemeral share; Key is the share key wrapped by the account key.
type Send struct {
	ID        string
	AccountID string
	Key       string
}

// EmergencyAccessStatus tracks an emergency access grant's lifecycle.
type EmergencyAccessStatus string

const (
	EmergencyAccessInvited           EmergencyAccessStatus = "invited"
	EmergencyAccessAccepted          EmergencyAccessStatus = "accepted"
	EmergencyAccessConfirmed         EmergencyAccessStatus = "confirmed"
	EmergencyAccessRecoveryInitiated EmergencyAccessStatus = "recovery_initiated"
	EmergencyAccessRecoveryApproved  EmergencyAccessStatus = "recovery_approved"
)

type EmergencyAccessType string

const (
	EmergencyAccessView     EmergencyAccessType = "view"
	EmergencyAccessTakeover EmergencyAccessType = "takeover"
)

// EmergencyAccess lets a grantee recover the grantor's vault. KeyEncrypted is
// the grantor's account key wrapped for the grantee and only exists once the
// grant has been confirmed.
type EmergencyAccess struct {
	ID           string
	GrantorID    string
	GranteeID    *string
	Email        string
	KeyEncrypted *string
	Status       EmergencyAccessStatus
	Type         EmergencyAccessType
	WaitTimeDays int
}

// OrganizationMembership carries the account recovery enrollment: the
// account key wrapped to the organization's recovery key.
type OrganizationMembership struct {
	ID               string
	OrganizationID   string
	AccountID        string
	ResetPasswordKey *string
}

// PasskeyCredential is a WebAuthn credential. PRF capable credentials can
// unlock the vault and so carry a copy of the account key.
type PasskeyCredential struct {
	ID                  string
	AccountID           string
	Name                string
	SupportsPRF         bool
	EncryptedUserKey    *string
	EncryptedPublicKey  *string
	EncryptedPrivateKey *string
}

// PRFEnabled reports whether the credential holds account key material.
func (p PasskeyCredential) PRFEnabled() bool {
	return p.SupportsPRF &&
		p.EncryptedUserKey != nil &&
		p.EncryptedPublicKey != nil &&
		p.EncryptedPrivateKey != nil
}
