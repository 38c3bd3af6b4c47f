package domain

import "time"

// Account is the owner of a vault and of the account key everything in it is
// wrapped under. The server only ever sees ciphertext and the hash of the
// client's master password proof.
type Account struct {
	ID                 string
	Email              string
	MasterPasswordHash string // argon2 encoded proof
	AccountKey         string // account key wrapped by the master key
	KeyPair            KeyPair
	TOTPSecret         *string    // base32, set on enrollment
	TOTPEnabledAt      *time.Time // set once enrollment is verified
	SecurityStamp      string     // changes on every rotation; sessions carry a copy
	LastKeyRotationAt  *time.Time
	RevisionAt         time.Time // optimistic concurrency token for key replacement
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TOTPEnabled reports whether rotation must also present a one-time code.
func (a Account) TOTPEnabled() bool {
	return a.TOTPEnabledAt != nil && a.TOTPSecret != nil
}

// KeyPair is the account's asymmetric key pair. The private half is wrapped by
// the account key.
type KeyPair struct {
	PublicKey           string `json:"public_key" validate:"required"`
	EncryptedPrivateKey string `json:"encrypted_private_key" validate:"required"`
}

// IsZero reports whether either half is missing.
func (k KeyPair) IsZero() bool {
	return k.PublicKey == "" || k.EncryptedPrivateKey == ""
}

// AccountKeyUpdate is the account level part of a committed rotation.
type AccountKeyUpdate struct {
	AccountKey        string
	KeyPair           KeyPair
	SecurityStamp     string
	LastKeyRotationAt time.Time
	RevisionAt        time.Time
}
