package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
)

var (
	// ErrAuthenticationFailed covers a wrong master password proof, a wrong or
	// missing one-time code, and unknown accounts alike.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrConcurrentRotation means the account changed between validation and
	// commit. The client should reload and retry.
	ErrConcurrentRotation = errors.New("concurrent key rotation")

	ErrSessionInvalid     = errors.New("session invalid")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidTOTPCode    = errors.New("invalid TOTP code")
	ErrTOTPAlreadyEnabled = errors.New("TOTP already enabled")
	ErrTOTPNotEnrolled    = errors.New("TOTP not enrolled")
)

// IncompleteRotationError lists the records of one domain that hold account
// key material but were left out of the rotation request.
type IncompleteRotationError struct {
	Domain     domain.RotationDomain
	MissingIDs []string
}

func (e *IncompleteRotationError) Error() string {
	return fmt.Sprintf("incomplete rotation: %s missing %s", e.Domain, strings.Join(e.MissingIDs, ", "))
}

// InvalidRotationPayloadError reports a submitted record whose replacement
// field is empty. RecordID is empty for the account's own key material.
type InvalidRotationPayloadError struct {
	Domain   domain.RotationDomain
	RecordID string
	Field    string
}

func (e *InvalidRotationPayloadError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("invalid rotation payload: %s %s is empty", e.Domain, e.Field)
	}
	return fmt.Sprintf("invalid rotation payload: %s %s %s is empty", e.Domain, e.RecordID, e.Field)
}

// PersistenceError wraps a storage failure during a rotation. Nothing was
// committed when it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence failure: " + e.Op + ": " + e.Err.Error()
}
func (e *PersistenceError) Unwrap() error { return e.Err }

// RotationProblems flattens a (possibly joined) rotation error into its
// per-domain validation failures.
func RotationProblems(err error) ([]*IncompleteRotationError, []*InvalidRotationPayloadError) {
	var (
		incomplete []*IncompleteRotationError
		invalid    []*InvalidRotationPayloadError
	)

	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *IncompleteRotationError:
			incomplete = append(incomplete, e)
		case *InvalidRotationPayloadError:
			invalid = append(invalid, e)
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(e.Unwrap())
		}
	}
	walk(err)

	return incomplete, invalid
}
