package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
	"github.com/aussiebroadwan/vaultkey/internal/vault/service"
	"github.com/aussiebroadwan/vaultkey/pkg/httpx"
	"github.com/aussiebroadwan/vaultkey/pkg/slogx"
	"github.com/aussiebroadwan/vaultkey/pkg/vaultsdk"
)

type AccountsHandler struct {
	AccountService *service.AccountService
	Validate       *validator.Validate
}

// HandleRegister handles POST /v1/accounts
//
//	@Summary		Register an account
//	@Description	Creates an account from client generated key material. The server stores a hash of the master password proof, never the password.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		vaultsdk.RegisterRequest	true	"Account and key material"
//	@Success		201		{object}	vaultsdk.AccountResponse
//	@Failure		400		{object}	vaultsdk.APIError	"Invalid request"
//	@Failure		409		{object}	vaultsdk.APIError	"Email already registered"
//	@Failure		429		{object}	vaultsdk.APIError	"Rate limit exceeded"
//	@Failure		500		{object}	vaultsdk.APIError	"Internal server error"
//	@Router			/v1/accounts [post].
func (h *AccountsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req vaultsdk.RegisterRequest
	if !decodeAndValidate(w, r, h.Validate, maxBodyBytes, &req) {
		return
	}

	account, err := h.AccountService.Register(ctx, service.Registration{
		Email:               req.Email,
		MasterPasswordProof: req.MasterPasswordProof,
		AccountKey:          req.AccountKey,
		KeyPair: domain.KeyPair{
			PublicKey:           req.KeyPair.PublicKey,
			EncryptedPrivateKey: req.KeyPair.EncryptedPrivateKey,
		},
	})
	if errors.Is(err, service.ErrEmailTaken) {
		writeError(w, http.StatusConflict, vaultsdk.ErrorCodeEmailTaken, "email already registered")
		return
	}
	if err != nil {
		log.Error("failed to register account", "err", err)
		writeServerError(w)
		return
	}

	log.Info("account registered", "account_id", account.ID)
	httpx.WriteJSON(w, http.StatusCreated, accountResponse(account))
}

// HandleKeys handles GET /v1/accounts/keys
//
//	@Summary		Get wrapped key material
//	@Description	Returns the account key and key pair as stored, wrapped by the client's master key.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	vaultsdk.KeysResponse
//	@Failure		401	{object}	vaultsdk.APIError	"Invalid or missing access token"
//	@Failure		500	{object}	vaultsdk.APIError	"Internal server error"
//	@Router			/v1/accounts/keys [get].
func (h *AccountsHandler) HandleKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := h.AccountService.GetAccount(ctx, httpx.AccountID(ctx))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load account", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, vaultsdk.KeysResponse{
		AccountKey: account.AccountKey,
		KeyPair: vaultsdk.KeyPair{
			PublicKey:           account.KeyPair.PublicKey,
			EncryptedPrivateKey: account.KeyPair.EncryptedPrivateKey,
		},
		LastKeyRotationAt: account.LastKeyRotationAt,
		Revision:          account.RevisionAt.UnixNano(),
	})
}

func accountResponse(a domain.Account) vaultsdk.AccountResponse {
	return vaultsdk.AccountResponse{
		ID:          a.ID,
		Email:       a.Email,
		TOTPEnabled: a.TOTPEnabled(),
		CreatedAt:   a.CreatedAt,
	}
}
