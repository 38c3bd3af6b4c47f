package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/vaultkey/api/vault" // Swagger docs
	"github.com/aussiebroadwan/vaultkey/internal/vault/metrics"
	"github.com/aussiebroadwan/vaultkey/internal/vault/service"
	"github.com/aussiebroadwan/vaultkey/internal/vault/store"
	"github.com/aussiebroadwan/vaultkey/pkg/httpx"
	"github.com/aussiebroadwan/vaultkey/pkg/jwtx"
	"github.com/aussiebroadwan/vaultkey/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeyManager
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	validate     *validator.Validate

	store    store.Store
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	AccountService     *service.AccountService
	SessionService     *service.SessionService
	TOTPService        *service.TOTPService
	KeyRotationService *service.KeyRotationService
}

// NewRouter creates a Router. gatherer may be nil, in which case /metrics is
// not served.
func NewRouter(
	keys *jwtx.KeyManager,
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		validate:     newValidator(),
		store:        st,
		metrics:      m,
		gatherer:     gatherer,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Observe(func(req *http.Request, status int, _ time.Duration) {
			r.metrics.HTTPRequest(req.Method, status)
		}),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerSessions()
	r.registerTOTP()
	r.registerKeyRotation()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Vault Key Service API
//	@version		0.1.0
//	@description	Account, session and account key rotation endpoints of the vault.
//	@description
//	@description				The server only stores ciphertext. Rotating the account key replaces every record wrapped under it in one transaction and ends all other sessions.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/vaultkey
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authenticated(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.keys.Verifier, r.SessionService),
		httpx.RateLimitByAccount(limit),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{
		AccountService: r.AccountService,
		Validate:       r.validate,
	}

	// POST /v1/accounts - public signup, strict by IP
	r.Mux.Handle("POST /v1/accounts",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /v1/accounts/keys", r.authenticated(http.HandlerFunc(h.HandleKeys), httpx.LenientLimit))
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{
		SessionService: r.SessionService,
		Validate:       r.validate,
	}

	// POST /v1/sessions - credential check, limited by IP + email to slow
	// down guessing against one account from many addresses
	r.Mux.Handle("POST /v1/sessions",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	r.Mux.Handle("DELETE /v1/sessions/current", r.authenticated(http.HandlerFunc(h.HandleLogout), httpx.ModerateLimit))
}

func (r *Router) registerTOTP() {
	h := &TOTPHandler{
		TOTPService: r.TOTPService,
		Validate:    r.validate,
	}

	r.Mux.Handle("POST /v1/accounts/totp/enroll", r.authenticated(http.HandlerFunc(h.HandleEnroll), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/accounts/totp/verify", r.authenticated(http.HandlerFunc(h.HandleVerify), httpx.StrictLimit))
}

func (r *Router) registerKeyRotation() {
	h := &KeyRotationHandler{
		KeyRotationService: r.KeyRotationService,
		Validate:           r.validate,
	}

	// The rotation re-checks the master password proof, so it is limited
	// like a login.
	r.Mux.Handle("POST /v1/accounts/key-rotation", r.authenticated(http.HandlerFunc(h.HandleRotate), httpx.StrictLimit))
	r.Mux.Handle("GET /v1/accounts/key-rotation/manifest", r.authenticated(http.HandlerFunc(h.HandleManifest), httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys.KeySet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}
}
