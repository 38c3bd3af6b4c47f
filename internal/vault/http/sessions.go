package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/vaultkey/internal/vault/service"
	"github.com/aussiebroadwan/vaultkey/pkg/httpx"
	"github.com/aussiebroadwan/vaultkey/pkg/slogx"
	"github.com/aussiebroadwan/vaultkey/pkg/vaultsdk"
)

type SessionsHandler struct {
	SessionService *service.SessionService
	Validate       *validator.Validate
}

// HandleLogin handles POST /v1/sessions
//
//	@Summary		Log in
//	@Description	Verifies the master password proof (and one-time code once TOTP is enabled), opens a session and returns an access token for it.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		vaultsdk.LoginRequest	true	"Credentials"
//	@Success		201		{object}	vaultsdk.LoginResponse
//	@Failure		400		{object}	vaultsdk.APIError	"Invalid request"
//	@Failure		401		{object}	vaultsdk.APIError	"Invalid credentials"
//	@Failure		429		{object}	vaultsdk.APIError	"Rate limit exceeded"
//	@Failure		500		{object}	vaultsdk.APIError	"Internal server error"
//	@Router			/v1/sessions [post].
func (h *SessionsHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req vaultsdk.LoginRequest
	if !decodeAndValidate(w, r, h.Validate, maxBodyBytes, &req) {
		return
	}

	res, err := h.SessionService.Login(ctx, service.Credentials{
		Email:               req.Email,
		MasterPasswordProof: req.MasterPasswordProof,
		OTP:                 req.OTP,
		Device:              req.Device,
	})
	if errors.Is(err, service.ErrAuthenticationFailed) {
		log.Warn("login failed")
		writeError(w, http.StatusUnauthorized, vaultsdk.ErrorCodeInvalidCredentials, "invalid credentials")
		return
	}
	if err != nil {
		log.Error("failed to log in", "err", err)
		writeServerError(w)
		return
	}

	log.Info("session opened", "account_id", res.Account.ID, "session_id", res.Session.ID)
	httpx.WriteJSON(w, http.StatusCreated, vaultsdk.LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   res.ExpiresIn,
		AccountID:   res.Account.ID,
		SessionID:   res.Session.ID,
	})
}

// HandleLogout handles DELETE /v1/sessions/current
//
//	@Summary		Log out
//	@Description	Revokes the session the access token belongs to.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	vaultsdk.APIError	"Invalid or missing access token"
//	@Failure		500	{object}	vaultsdk.APIError	"Internal server error"
//	@Router			/v1/sessions/current [delete].
func (h *SessionsHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.SessionService.Logout(ctx, httpx.AccountID(ctx), httpx.SessionID(ctx))
	if errors.Is(err, service.ErrSessionInvalid) {
		writeError(w, http.StatusUnauthorized, vaultsdk.ErrorCodeInvalidToken, "session is no longer valid")
		return
	}
	if err != nil {
		slogx.FromContext(ctx).Error("failed to revoke session", "err", err)
		writeServerError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
