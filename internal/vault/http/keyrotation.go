package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/vaultkey/internal/vault/domain"
	"github.com/aussiebroadwan/vaultkey/internal/vault/service"
	"github.com/aussiebroadwan/vaultkey/pkg/httpx"
	"github.com/aussiebroadwan/vaultkey/pkg/slogx"
	"github.com/aussiebroadwan/vaultkey/pkg/vaultsdk"
)

type KeyRotationHandler struct {
	KeyRotationService *service.KeyRotationService
	Validate           *validator.Validate
}

// HandleRotate handles POST /v1/accounts/key-rotation
//
//	@Summary		Rotate the account key
//	@Description	Replaces the account key, the key pair and every record wrapped under the old account key in one transaction.
//	@Description	The request must cover every record listed by the manifest. Nothing is written unless every domain validates.
//	@Description	On success the calling session stays valid and every other session of the account is ended.
//	@Tags			Key Rotation
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		vaultsdk.RotateKeyRequest	true	"New key material and re-encrypted records"
//	@Success		200		{object}	vaultsdk.RotateKeyResponse
//	@Failure		400		{object}	vaultsdk.APIError	"Incomplete rotation or empty key material"
//	@Failure		401		{object}	vaultsdk.APIError	"Invalid credentials or access token"
//	@Failure		409		{object}	vaultsdk.APIError	"The account changed during the rotation"
//	@Failure		429		{object}	vaultsdk.APIError	"Rate limit exceeded"
//	@Failure		500		{object}	vaultsdk.APIError	"Internal server error"
//	@Router			/v1/accounts/key-rotation [post].
func (h *KeyRotationHandler) HandleRotate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req vaultsdk.RotateKeyRequest
	if !decodeAndValidate(w, r, h.Validate, maxRotationBodyBytes, &req) {
		return
	}

	res, err := h.KeyRotationService.RotateAccountKey(ctx, httpx.AccountID(ctx), httpx.SessionID(ctx), rotationRequest(req))
	if err != nil {
		writeRotationError(w, log, err)
		return
	}

	records := make(map[string]int, len(res.Records))
	for d, n := range res.Records {
		records[string(d)] = n
	}
	httpx.WriteJSON(w, http.StatusOK, vaultsdk.RotateKeyResponse{
		AccountID: res.AccountID,
		RotatedAt: res.RotatedAt,
		Records:   records,
	})
}

// HandleManifest handles GET /v1/accounts/key-rotation/manifest
//
//	@Summary		List records a rotation must cover
//	@Description	Returns, per domain, the ids of the records that currently hold material wrapped under the account key.
//	@Tags			Key Rotation
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	vaultsdk.ManifestResponse
//	@Failure		401	{object}	vaultsdk.APIError	"Invalid or missing access token"
//	@Failure		500	{object}	vaultsdk.APIError	"Internal server error"
//	@Router			/v1/accounts/key-rotation/manifest [get].
func (h *KeyRotationHandler) HandleManifest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, err := h.KeyRotationService.RotationManifest(ctx, httpx.AccountID(ctx))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to build rotation manifest", "err", err)
		writeServerError(w)
		return
	}

	domains := make(map[string][]string, len(m.Domains))
	for d, ids := range m.Domains {
		if ids == nil {
			ids = []string{}
		}
		domains[string(d)] = ids
	}
	httpx.WriteJSON(w, http.StatusOK, vaultsdk.ManifestResponse{
		AccountID: m.AccountID,
		Revision:  m.Revision,
		Domains:   domains,
	})
}

func writeRotationError(w http.ResponseWriter, log *slog.Logger, err error) {
	var persistence *service.PersistenceError
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, vaultsdk.ErrorCodeInvalidCredentials, "invalid credentials")
		return
	case errors.Is(err, service.ErrConcurrentRotation):
		writeError(w, http.StatusConflict, vaultsdk.ErrorCodeConcurrentRotation, "the account changed during the rotation, reload and retry")
		return
	case errors.As(err, &persistence):
		log.Error("key rotation failed", "err", err)
		writeServerError(w)
		return
	}

	incomplete, invalid := service.RotationProblems(err)
	if len(incomplete) == 0 && len(invalid) == 0 {
		log.Error("key rotation failed", "err", err)
		writeServerError(w)
		return
	}

	body := vaultsdk.APIError{
		Code:    vaultsdk.ErrorCodeInvalidRotationPayload,
		Message: "rotation contains empty key material",
	}
	if len(incomplete) > 0 {
		body.Code = vaultsdk.ErrorCodeIncompleteRotation
		body.Message = "rotation does not cover every record"
	}
	for _, e := range incomplete {
		body.Problems = append(body.Problems, vaultsdk.Problem{
			Kind:   vaultsdk.ProblemMissing,
			Domain: string(e.Domain),
			IDs:    e.MissingIDs,
		})
	}
	for _, e := range invalid {
		p := vaultsdk.Problem{Kind: vaultsdk.ProblemEmpty, Domain: string(e.Domain), Field: e.Field}
		if e.RecordID != "" {
			p.IDs = []string{e.RecordID}
		}
		body.Problems = append(body.Problems, p)
	}
	httpx.WriteJSON(w, http.StatusBadRequest, body)
}

func rotationRequest(req vaultsdk.RotateKeyRequest) *domain.RotationRequest {
	return &domain.RotationRequest{
		MasterPasswordProof: req.MasterPasswordProof,
		OTP:                 req.OTP,
		AccountKey:          req.AccountKey,
		KeyPair: domain.KeyPair{
			PublicKey:           req.KeyPair.PublicKey,
			EncryptedPrivateKey: req.KeyPair.EncryptedPrivateKey,
		},
		Items:           rotatedRecords(req.Items),
		Folders:         rotatedRecords(req.Folders),
		Sends:           rotatedRecords(req.Sends),
		EmergencyAccess: rotatedRecords(req.EmergencyAccess),
		AccountRecovery: rotatedRecords(req.AccountRecovery),
		Passkeys:        rotatedPasskeys(req.Passkeys),
	}
}

func rotatedRecords(in []vaultsdk.RotatedRecord) []domain.RotatedRecord {
	out := make([]domain.RotatedRecord, len(in))
	for i, r := range in {
		out[i] = domain.RotatedRecord{ID: r.ID, Payload: r.Payload}
	}
	return out
}

func rotatedPasskeys(in []vaultsdk.RotatedPasskey) []domain.RotatedPasskey {
	out := make([]domain.RotatedPasskey, len(in))
	for i, p := range in {
		out[i] = domain.RotatedPasskey{
			ID:                 p.ID,
			EncryptedUserKey:   p.EncryptedUserKey,
			EncryptedPublicKey: p.EncryptedPublicKey,
		}
	}
	return out
}
