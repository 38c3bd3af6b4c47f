package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp/totp"
	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
	"github.com/aussiebroadwan/vaultkey/internal/vault/metrics"
	"github.com/aussiebroadwan/vaultkey/internal/vault/notify"
	"github.com/aussiebroadwan/vaultkey/internal/vault/store"
	"github.com/aussiebroadwan/vaultkey/pkg/cryptox"
	"github.com/aussiebroadwan/vaultkey/pkg/idx"
	"github.com/aussiebroadwan/vaultkey/pkg/slogx"
)

const (
	defaultNotifyTimeout = 10 * time.Second
	defaultNotifyRetries = 3
)

// KeyRotationService replaces an account key and every record wrapped under
// it in a single transaction.
type KeyRotationService struct {
	Store      store.Store
	Validators []RotationValidator
	Notifier   notify.Notifier
	Metrics    *metrics.Metrics

	// NotifyTimeout bounds all attempts of the post-commit notification.
	NotifyTimeout time.Duration
	NotifyRetries int
	NotifyBackoff time.Duration

	Now func() time.Time
}

func NewKeyRotationService(st store.Store, n notify.Notifier, m *metrics.Metrics) *KeyRotationService {
	return &KeyRotationService{
		Store:      st,
		Validators: DefaultValidators(),
		Notifier:   n,
		Metrics:    m,
	}
}

// PreparedRotation is a fully validated rotation that has not been written.
type PreparedRotation struct {
	// Account is the state validation ran against. Its RevisionAt guards the
	// commit.
	Account    domain.Account
	AccountKey string
	KeyPair    domain.KeyPair
	Updates    []*RotationUpdate
}

// RotationResult describes a committed rotation.
type RotationResult struct {
	AccountID     string
	SecurityStamp string
	RotatedAt     time.Time
	Records       map[domain.RotationDomain]int
}

// RotateAccountKey authenticates the request, validates every domain and
// commits the new key material. sessionID is the session performing the
// rotation; it stays valid while every other session of the account is ended.
func (s *KeyRotationService) RotateAccountKey(ctx context.Context, accountID, sessionID string, req *domain.RotationRequest) (*RotationResult, error) {
	start := time.Now()

	res, err := s.rotate(ctx, accountID, sessionID, req)
	s.Metrics.RotationFinished(rotationOutcome(err), time.Since(start))
	if err != nil {
		slogx.FromContext(ctx).Warn("key rotation rejected", "account_id", accountID, "err", err)
		return nil, err
	}

	slogx.FromContext(ctx).Info("key rotation committed", "account_id", accountID, "records", res.Records)
	s.notifyOtherSessions(ctx, accountID, sessionID)
	return res, nil
}

func (s *KeyRotationService) rotate(ctx context.Context, accountID, sessionID string, req *domain.RotationRequest) (*RotationResult, error) {
	p, err := s.PrepareRotation(ctx, accountID, req)
	if err != nil {
		return nil, err
	}
	return s.CommitRotation(ctx, p, sessionID)
}

// PrepareRotation authenticates and validates a rotation without writing
// anything. Validation failures of all domains are returned together.
func (s *KeyRotationService) PrepareRotation(ctx context.Context, accountID string, req *domain.RotationRequest) (*PreparedRotation, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAuthenticationFailed
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load account", Err: err}
	}

	if err := s.authenticate(ctx, account, req); err != nil {
		return nil, err
	}

	errs := []error{checkAccountKeys(req)}

	updates := make([]*RotationUpdate, len(s.Validators))
	validatorErrs := make([]error, len(s.Validators))

	// Validators only read, and each reports into its own slot so the
	// result order does not depend on scheduling.
	var g errgroup.Group
	for i, v := range s.Validators {
		g.Go(func() error {
			updates[i], validatorErrs[i] = v.Validate(ctx, s.Store, account, req)
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(append(errs, validatorErrs...)...); err != nil {
		return nil, err
	}

	return &PreparedRotation{
		Account:    account,
		AccountKey: req.AccountKey,
		KeyPair:    req.KeyPair,
		Updates:    updates,
	}, nil
}

// CommitRotation writes a prepared rotation in one transaction. It fails with
// ErrConcurrentRotation, leaving everything untouched, if the account or any
// rotated domain changed since PrepareRotation.
func (s *KeyRotationService) CommitRotation(ctx context.Context, p *PreparedRotation, sessionID string) (*RotationResult, error) {
	now := s.now()

	// The revision must move even when the clock did not.
	revision := now
	if !revision.After(p.Account.RevisionAt) {
		revision = p.Account.RevisionAt.Add(time.Nanosecond)
	}

	stamp := idx.New().String()
	update := domain.AccountKeyUpdate{
		AccountKey:        p.AccountKey,
		KeyPair:           p.KeyPair,
		SecurityStamp:     stamp,
		LastKeyRotationAt: now,
		RevisionAt:        revision,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().ReplaceAccountKeys(ctx, p.Account.ID, p.Account.RevisionAt, update); err != nil {
			return fmt.Errorf("replace account keys: %w", err)
		}

		if sessionID != "" {
			err := tx.Sessions().RestampSession(ctx, sessionID, stamp)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("restamp session: %w", err)
			}
		}

		for _, u := range p.Updates {
			if err := u.Apply(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	switch {
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("%w: %v", ErrConcurrentRotation, err)
	case err != nil:
		return nil, &PersistenceError{Op: "commit rotation", Err: err}
	}

	records := make(map[domain.RotationDomain]int, len(p.Updates))
	for _, u := range p.Updates {
		records[u.Domain] = len(u.RecordIDs)
		s.Metrics.RecordsRotated(string(u.Domain), len(u.RecordIDs))
	}

	return &RotationResult{
		AccountID:     p.Account.ID,
		SecurityStamp: stamp,
		RotatedAt:     now,
		Records:       records,
	}, nil
}

// RotationManifest lists the records a rotation submitted now must cover.
func (s *KeyRotationService) RotationManifest(ctx context.Context, accountID string) (domain.RotationManifest, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return domain.RotationManifest{}, err
	}

	m := domain.RotationManifest{
		AccountID: account.ID,
		Revision:  account.RevisionAt.UnixNano(),
		Domains:   make(map[domain.RotationDomain][]string, len(s.Validators)),
	}
	for _, v := range s.Validators {
		ids, err := v.Required(ctx, s.Store, accountID)
		if err != nil {
			return domain.RotationManifest{}, err
		}
		m.Domains[v.Domain()] = ids
	}
	return m, nil
}

func (s *KeyRotationService) authenticate(ctx context.Context, account domain.Account, req *domain.RotationRequest) error {
	if req.MasterPasswordProof == "" {
		return ErrAuthenticationFailed
	}

	if err := cryptox.VerifySecret(req.MasterPasswordProof, account.MasterPasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			slogx.FromContext(ctx).Error("verify master password proof", "account_id", account.ID, "err", err)
		}
		return ErrAuthenticationFailed
	}

	if account.TOTPEnabled() && (req.OTP == "" || !totp.Validate(req.OTP, *account.TOTPSecret)) {
		return ErrAuthenticationFailed
	}
	return nil
}

func checkAccountKeys(req *domain.RotationRequest) error {
	var field string
	switch {
	case req.AccountKey == "":
		field = "account_key"
	case req.KeyPair.PublicKey == "":
		field = "public_key"
	case req.KeyPair.EncryptedPrivateKey == "":
		field = "encrypted_private_key"
	default:
		return nil
	}
	return &InvalidRotationPayloadError{Domain: domain.DomainAccount, Field: field}
}

// notifyOtherSessions runs after commit and must not be cut short by the
// caller going away. Failures are logged; the sessions are already invalid.
func (s *KeyRotationService) notifyOtherSessions(ctx context.Context, accountID, sessionID string) {
	if s.Notifier == nil {
		return
	}

	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	retries := s.NotifyRetries
	if retries <= 0 {
		retries = defaultNotifyRetries
	}
	backoff := s.NotifyBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	log := slogx.FromContext(ctx)
	ev := notify.NewLogoutEvent(accountID, sessionID, notify.ReasonKeyRotation, s.now())

	var err error
	for attempt := range retries {
		if attempt > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(backoff << (attempt - 1)):
			}
			if ctx.Err() != nil {
				break
			}
		}

		if err = s.Notifier.LogoutOtherSessions(ctx, ev); err == nil {
			s.Metrics.Notification(true)
			return
		}
		log.Warn("logout notification failed", "account_id", accountID, "attempt", attempt+1, "err", err)
	}

	s.Metrics.Notification(false)
	log.Error("logout notification abandoned", "account_id", accountID, "event_id", ev.ID, "err", err)
}

func (s *KeyRotationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func rotationOutcome(err error) string {
	var (
		incomplete  *IncompleteRotationError
		invalid     *InvalidRotationPayloadError
		persistence *PersistenceError
	)
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrAuthenticationFailed):
		return metrics.ResultAuthFailed
	case errors.Is(err, ErrConcurrentRotation):
		return metrics.ResultConflict
	case errors.As(err, &persistence):
		return metrics.ResultError
	case errors.As(err, &incomplete):
		return metrics.ResultIncomplete
	case errors.As(err, &invalid):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
