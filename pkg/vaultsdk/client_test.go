package vaultsdk

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://vault.test"

func newMockClient(t *testing.T) *Client {
	t.Helper()

	c := New(baseURL + "/")
	httpmock.ActivateNonDefault(c.HTTPClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestLoginAndRotate(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/v1/sessions",
		httpmock.NewJsonResponderOrPanic(http.StatusCreated, LoginResponse{
			AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 900, AccountID: "acc", SessionID: "sess",
		}))
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/v1/accounts/key-rotation",
		func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Authorization") != "Bearer tok" {
				return httpmock.NewStringResponse(http.StatusUnauthorized, `{"error":"invalid_token"}`), nil
			}
			return httpmock.NewJsonResponse(http.StatusOK, RotateKeyResponse{AccountID: "acc", Records: map[string]int{"vault_items": 1}})
		})

	sess, err := c.Login(ctx, LoginRequest{Email: "a@example.test", MasterPasswordProof: "p"})
	require.NoError(t, err)
	require.Equal(t, "sess", sess.SessionID)
	require.Equal(t, "tok", sess.AccessToken())

	res, err := sess.RotateAccountKey(ctx, RotateKeyRequest{AccountKey: "k"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Records["vault_items"])

	require.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestRotateIncompleteIsTyped(t *testing.T) {
	c := newMockClient(t)

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/v1/accounts/key-rotation",
		httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, APIError{
			Code:    ErrorCodeIncompleteRotation,
			Message: "rotation does not cover every record",
			Problems: []Problem{
				{Kind: ProblemMissing, Domain: "emergency_access", IDs: []string{"E1"}},
			},
		}))

	_, err := c.NewSession("acc", "sess", "tok").RotateAccountKey(context.Background(), RotateKeyRequest{})
	require.ErrorIs(t, err, ErrIncompleteRotation)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, []string{"E1"}, apiErr.MissingIDs("emergency_access"))
	require.Nil(t, apiErr.MissingIDs("folders"))
	require.Contains(t, apiErr.Error(), "missing emergency_access E1")
}

func TestNonJSONErrorBody(t *testing.T) {
	c := newMockClient(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/readyz",
		httpmock.NewStringResponder(http.StatusBadGateway, "upstream down"))

	_, err := c.Readyz(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
	require.Equal(t, "upstream down", apiErr.Message)
}

func TestSessionCalls(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()
	sess := c.NewSession("acc", "sess", "tok")

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/v1/accounts/keys",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, KeysResponse{AccountKey: "k", Revision: 7}))
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/v1/accounts/key-rotation/manifest",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, ManifestResponse{AccountID: "acc", Domains: map[string][]string{"folders": {"F1"}}}))
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/v1/accounts/totp/verify",
		httpmock.NewStringResponder(http.StatusNoContent, ""))
	httpmock.RegisterResponder(http.MethodDelete, baseURL+"/v1/sessions/current",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"error":"invalid_token","message":"session is no longer valid"}`))

	keys, err := sess.Keys(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 7, keys.Revision)

	m, err := sess.RotationManifest(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"F1"}, m.Domains["folders"])

	require.NoError(t, sess.VerifyTOTP(ctx, "123456"))
	require.ErrorIs(t, sess.Logout(ctx), ErrInvalidToken)
}

func TestJWKS(t *testing.T) {
	c := newMockClient(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/.well-known/jwks.json",
		httpmock.NewStringResponder(http.StatusOK,
			`{"keys":[{"kty":"OKP","use":"sig","alg":"EdDSA","kid":"vault-1","crv":"Ed25519","x":"11qYAYKxCrfVS_7TyWQHOg7hcvPapiMlrwIaaPcHURo"}]}`))

	set, err := c.JWKS(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Keys, 1)
	require.Equal(t, "vault-1", set.Keys[0].Kid)

	pub, err := set.Keys[0].PublicKey()
	require.NoError(t, err)
	require.Len(t, pub, 32)
}
