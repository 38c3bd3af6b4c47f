package vaultsdk

import (
	"context"
	"net/http"
)

// Session is a logged in client. Its access token is short lived; once it
// expires, or once another device rotates the account key, calls fail with
// ErrInvalidToken and the caller has to log in again.
type Session struct {
	client      *Client
	accessToken string

	AccountID string
	SessionID string
}

// NewSession resumes a session from a stored access token.
func (c *Client) NewSession(accountID, sessionID, accessToken string) *Session {
	return &Session{client: c, AccountID: accountID, SessionID: sessionID, accessToken: accessToken}
}

func (s *Session) AccessToken() string { return s.accessToken }

func (s *Session) Keys(ctx context.Context) (*KeysResponse, error) {
	var out KeysResponse
	if err := s.client.do(ctx, s.accessToken, http.MethodGet, "/v1/accounts/keys", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	var out TOTPEnrollResponse
	if err := s.client.do(ctx, s.accessToken, http.MethodPost, "/v1/accounts/totp/enroll", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) VerifyTOTP(ctx context.Context, code string) error {
	return s.client.do(ctx, s.accessToken, http.MethodPost, "/v1/accounts/totp/verify", TOTPVerifyRequest{Code: code}, nil, http.StatusNoContent)
}

func (s *Session) RotationManifest(ctx context.Context) (*ManifestResponse, error) {
	var out ManifestResponse
	if err := s.client.do(ctx, s.accessToken, http.MethodGet, "/v1/accounts/key-rotation/manifest", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RotateAccountKey replaces the account key. On success this session stays
// valid and every other session of the account is ended.
func (s *Session) RotateAccountKey(ctx context.Context, req RotateKeyRequest) (*RotateKeyResponse, error) {
	var out RotateKeyResponse
	if err := s.client.do(ctx, s.accessToken, http.MethodPost, "/v1/accounts/key-rotation", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Logout(ctx context.Context) error {
	return s.client.do(ctx, s.accessToken, http.MethodDelete, "/v1/sessions/current", nil, nil, http.StatusNoContent)
}
