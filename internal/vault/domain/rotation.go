package domain

// RotationDomain names a family of records that carry account key material.
type RotationDomain string

const (
	DomainAccount         RotationDomain = "account"
	DomainVaultItems      RotationDomain = "vault_items"
	DomainFolders         RotationDomain = "folders"
	DomainSends           RotationDomain = "sends"
	DomainEmergencyAccess RotationDomain = "emergency_access"
	DomainAccountRecovery RotationDomain = "account_recovery"
	DomainPasskeys        RotationDomain = "passkeys"
)

// RotationRequest is one complete key rotation as submitted by the client.
// It is never persisted.
type RotationRequest struct {
	MasterPasswordProof string
	OTP                 string

	AccountKey string
	KeyPair    KeyPair

	Items           []RotatedRecord
	Folders         []RotatedRecord
	Sends           []RotatedRecord
	EmergencyAccess []RotatedRecord
	AccountRecovery []RotatedRecord
	Passkeys        []RotatedPasskey
}

// RotatedRecord is the re-encrypted replacement for one stored record.
type RotatedRecord struct {
	ID      string
	Payload string
}

// RotatedPasskey replaces the PRF key material of one passkey credential.
type RotatedPasskey struct {
	ID                 string
	EncryptedUserKey   string
	EncryptedPublicKey string
}

// RotationManifest lists, per domain, the records a complete rotation must
// cover right now.
type RotationManifest struct {
	AccountID string
	Revision  int64
	Domains   map[RotationDomain][]string
}
