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

type TOTPHandler struct {
	TOTPService *service.TOTPService
	Validate    *validator.Validate
}

// HandleEnroll handles POST /v1/accounts/totp/enroll
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a TOTP secret. TOTP is only required once the secret has been verified.
//	@Tags			TOTP
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	vaultsdk.TOTPEnrollResponse
//	@Failure		401	{object}	vaultsdk.APIError	"Invalid or missing access token"
//	@Failure		409	{object}	vaultsdk.APIError	"TOTP already enabled"
//	@Failure		500	{object}	vaultsdk.APIError	"Internal server error"
//	@Router			/v1/accounts/totp/enroll [post].
func (h *TOTPHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	enrollment, err := h.TOTPService.Enroll(ctx, httpx.AccountID(ctx))
	if errors.Is(err, service.ErrTOTPAlreadyEnabled) {
		writeError(w, http.StatusConflict, vaultsdk.ErrorCodeTOTPAlreadyEnabled, "TOTP is already enabled")
		return
	}
	if err != nil {
		log.Error("failed to enroll TOTP", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, vaultsdk.TOTPEnrollResponse{
		Secret:  enrollment.Secret,
		URL:     enrollment.URL,
		Issuer:  enrollment.Issuer,
		Account: enrollment.Account,
	})
}

// HandleVerify handles POST /v1/accounts/totp/verify
//
//	@Summary		Finish TOTP enrollment
//	@Description	Verifies a code against the enrolled secret and enables TOTP. From then on login and key rotation require a code.
//	@Tags			TOTP
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	vaultsdk.TOTPVerifyRequest	true	"One-time code"
//	@Success		204
//	@Failure		400	{object}	vaultsdk.APIError	"Invalid code"
//	@Failure		401	{object}	vaultsdk.APIError	"Invalid or missing access token"
//	@Failure		409	{object}	vaultsdk.APIError	"Not enrolled or already enabled"
//	@Failure		500	{object}	vaultsdk.APIError	"Internal server error"
//	@Router			/v1/accounts/totp/verify [post].
func (h *TOTPHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req vaultsdk.TOTPVerifyRequest
	if !decodeAndValidate(w, r, h.Validate, maxBodyBytes, &req) {
		return
	}

	err := h.TOTPService.Verify(ctx, httpx.AccountID(ctx), req.Code)
	switch {
	case err == nil:
		log.Info("TOTP enabled")
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrInvalidTOTPCode):
		writeError(w, http.StatusBadRequest, vaultsdk.ErrorCodeInvalidTOTPCode, "invalid TOTP code")
	case errors.Is(err, service.ErrTOTPAlreadyEnabled):
		writeError(w, http.StatusConflict, vaultsdk.ErrorCodeTOTPAlreadyEnabled, "TOTP is already enabled")
	case errors.Is(err, service.ErrTOTPNotEnrolled):
		writeError(w, http.StatusConflict, vaultsdk.ErrorCodeTOTPNotEnrolled, "TOTP enrollment has not been started")
	default:
		log.Error("failed to verify TOTP", "err", err)
		writeServerError(w)
	}
}
