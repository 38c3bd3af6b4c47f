package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/vaultkey/pkg/jwtx"
	"github.com/aussiebroadwan/vaultkey/pkg/slogx"
)

// SessionChecker confirms that a token's session is still live. Access tokens
// outlive security stamp changes, so the signature alone is not enough.
type SessionChecker interface {
	CheckSession(ctx context.Context, accountID, sessionID string) error
}

func AuthnMiddleware(v jwtx.Verifier, sessions SessionChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}
			if claims.Subject == "" || claims.SID == "" {
				writeBearerError(w, "token has no session")
				return
			}

			if err := sessions.CheckSession(ctx, claims.Subject, claims.SID); err != nil {
				writeBearerError(w, "session is no longer valid")
				log.Info("session rejected", "account_id", claims.Subject, "session_id", claims.SID, "err", err)
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credential from an Authorization header. The
// scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyAccountID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeySessionID, c.SID)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return slogx.WithAccount(ctx, c.Subject, c.SID)
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
