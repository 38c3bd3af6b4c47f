package domain

// TOTPEnrollment is returned when an account starts TOTP enrollment.
type TOTPEnrollment struct {
	Secret  string // base32
	URL     string // otpauth:// URL for QR rendering
	Issuer  string
	Account string
}
