package domain

import "time"

// Session is a logged in device. A session is only valid while its
// SecurityStamp matches the account's; a rotation changes the account stamp
// and thereby ends every session it did not re-stamp.
type Session struct {
	ID            string
	AccountID     string
	Device        string
	SecurityStamp string
	ExpiresAt     time.Time
	RevokedAt     *time.Time
	CreatedAt     time.Time
}

// ValidFor reports whether the session may still act for account at now.
func (s Session) ValidFor(account Account, now time.Time) bool {
	switch {
	case s.RevokedAt != nil:
		return false
	case !now.Before(s.ExpiresAt):
		return false
	case s.AccountID != account.ID:
		return false
	default:
		return s.SecurityStamp == account.SecurityStamp
	}
}
