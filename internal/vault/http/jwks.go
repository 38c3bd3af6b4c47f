package http

import (
	"net/http"

	"github.com/aussiebroadwan/vaultkey/pkg/httpx"
	"github.com/aussiebroadwan/vaultkey/pkg/jwtx"
	"github.com/aussiebroadwan/vaultkey/pkg/vaultsdk"
)

// JWKSHandler publishes the access token verification keys. The set changes
// on every restart since signing keys are never persisted.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set that verifies access tokens
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	vaultsdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, vaultsdk.JWKSResponse(keys.PublicJWKS()))
	}
}
