package vaultsdk

import (
	"time"

	"github.com/aussiebroadwan/vaultkey/pkg/jwtx"
)

type KeyPair struct {
	PublicKey           string `json:"public_key" validate:"required"`
	EncryptedPrivateKey string `json:"encrypted_private_key" validate:"required"`
}

type RegisterRequest struct {
	Email               string  `json:"email" validate:"required,email,max=254"`
	MasterPasswordProof string  `json:"master_password_proof" validate:"required,max=1024"`
	AccountKey          string  `json:"account_key" validate:"required"`
	KeyPair             KeyPair `json:"key_pair"`
}

type AccountResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	TOTPEnabled bool      `json:"totp_enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email               string `json:"email" validate:"required,email"`
	MasterPasswordProof string `json:"master_password_proof" validate:"required"`
	OTP                 string `json:"otp,omitempty" validate:"omitempty,numeric,len=6"`
	Device              string `json:"device,omitempty" validate:"max=128"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	AccountID   string `json:"account_id"`
	SessionID   string `json:"session_id"`
}

// KeysResponse is the account's current wrapped key material.
type KeysResponse struct {
	AccountKey        string     `json:"account_key"`
	KeyPair           KeyPair    `json:"key_pair"`
	LastKeyRotationAt *time.Time `json:"last_key_rotation_at,omitempty"`
	Revision          int64      `json:"revision"`
}

type TOTPEnrollResponse struct {
	Secret  string `json:"secret"`
	URL     string `json:"url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

type TOTPVerifyRequest struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

// RotatedRecord replaces the encrypted payload of one record: item data,
// folder name, send key, emergency access key or account recovery key.
type RotatedRecord struct {
	ID      string `json:"id" validate:"required"`
	Payload string `json:"payload"`
}

type RotatedPasskey struct {
	ID                 string `json:"id" validate:"required"`
	EncryptedUserKey   string `json:"encrypted_user_key"`
	EncryptedPublicKey string `json:"encrypted_public_key"`
}

// RotateKeyRequest must cover every record the account's current key wraps.
// Empty key material is reported by the server per record, not rejected as a
// malformed request.
type RotateKeyRequest struct {
	MasterPasswordProof string           `json:"master_password_proof"`
	OTP                 string           `json:"otp,omitempty"`
	AccountKey          string           `json:"account_key"`
	KeyPair             KeyPair          `json:"key_pair" validate:"-"`
	Items               []RotatedRecord  `json:"items" validate:"dive"`
	Folders             []RotatedRecord  `json:"folders" validate:"dive"`
	Sends               []RotatedRecord  `json:"sends" validate:"dive"`
	EmergencyAccess     []RotatedRecord  `json:"emergency_access" validate:"dive"`
	AccountRecovery     []RotatedRecord  `json:"account_recovery" validate:"dive"`
	Passkeys            []RotatedPasskey `json:"passkeys" validate:"dive"`
}

type RotateKeyResponse struct {
	AccountID string         `json:"account_id"`
	RotatedAt time.Time      `json:"rotated_at"`
	Records   map[string]int `json:"records"`
}

// ManifestResponse lists per domain the ids a rotation must include.
type ManifestResponse struct {
	AccountID string              `json:"account_id"`
	Revision  int64               `json:"revision"`
	Domains   map[string][]string `json:"domains"`
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// JWKSResponse is the public half of the service's access token signing keys,
// served at /.well-known/jwks.json.
type JWKSResponse jwtx.JWKS
