// Package notify tells an account's other sessions that they must log out.
//
// Delivery is best effort. A session is only honoured while its security
// stamp matches its account, so a lost notification delays the logout of a
// client but never keeps a stale session valid.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/vaultkey/pkg/slogx"
)

const ReasonKeyRotation = "key_rotation"

// LogoutEvent asks every session of AccountID except ExceptSessionID to log
// out.
type LogoutEvent struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	ExceptSessionID string    `json:"except_session_id,omitempty"`
	Reason          string    `json:"reason"`
	IssuedAt        time.Time `json:"issued_at"`
}

func NewLogoutEvent(accountID, exceptSessionID, reason string, now time.Time) LogoutEvent {
	return LogoutEvent{
		ID:              uuid.NewString(),
		AccountID:       accountID,
		ExceptSessionID: exceptSessionID,
		Reason:          reason,
		IssuedAt:        now.UTC(),
	}
}

type Notifier interface {
	LogoutOtherSessions(ctx context.Context, ev LogoutEvent) error
}

// LogNotifier only records the event. It is the default when no push
// transport is configured.
type LogNotifier struct{}

func (LogNotifier) LogoutOtherSessions(ctx context.Context, ev LogoutEvent) error {
	slogx.FromContext(ctx).Info("logout other sessions",
		"event_id", ev.ID,
		"account_id", ev.AccountID,
		"except_session_id", ev.ExceptSessionID,
		"reason", ev.Reason,
	)
	return nil
}
