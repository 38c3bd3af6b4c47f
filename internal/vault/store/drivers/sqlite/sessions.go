package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
	"github.com/aussiebroadwan/vaultkey/internal/vault/store"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (id, account_id, device, security_stamp, expires_at, revoked_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.AccountID, s.Device, s.SecurityStamp, toNanos(s.ExpiresAt), toNullNanos(s.RevokedAt), toNanos(s.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id string) (domain.Session, error) {
	var (
		s                domain.Session
		expires, created int64
		revoked          sql.NullInt64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, account_id, device, security_stamp, expires_at, revoked_at, created_at
		FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.AccountID, &s.Device, &s.SecurityStamp, &expires, &revoked, &created)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	s.ExpiresAt = fromNanos(expires)
	s.RevokedAt = fromNullNanos(revoked)
	s.CreatedAt = fromNanos(created)
	return s, nil
}

func (r *sessionsRepo) RestampSession(ctx context.Context, id, stamp string) error {
	err := expectOne(r.q.ExecContext(ctx,
		`UPDATE sessions SET security_stamp = ? WHERE id = ? AND revoked_at IS NULL`, stamp, id,
	))
	if errors.Is(err, store.ErrConflict) {
		return store.ErrNotFound
	}
	return err
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, id string, at time.Time) error {
	err := expectOne(r.q.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`, toNanos(at), id,
	))
	if errors.Is(err, store.ErrConflict) {
		return store.ErrNotFound
	}
	return err
}

func (r *sessionsRepo) DeleteStaleSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE expires_at <= ?
		   OR revoked_at IS NOT NULL
		   OR security_stamp <> (SELECT a.security_stamp FROM accounts a WHERE a.id = sessions.account_id)`,
		toNanos(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
