package httpx_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/vaultkey/pkg/httpx"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(requestFrom("192.168.1.1")))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := requestFrom("192.168.1.1")
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := requestFrom("192.168.1.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	extract := httpx.JSONFieldKeyExtractor("email")

	t.Run("reads the field and restores the body", func(t *testing.T) {
		body := `{"email":" Alice@Example.test ","proof":"p"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		require.Equal(t, "alice@example.test", extract(req))

		restored, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(restored))
	})

	t.Run("returns empty for missing, non-string or invalid input", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"email":5}`, `not json`, ``} {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			require.Empty(t, extract(req), body)
		}
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	withAccount := func(r *http.Request) string { return "acc-1" }
	none := func(r *http.Request) string { return "" }

	req := requestFrom("192.168.1.1")
	require.Equal(t, "acc-1:192.168.1.1", httpx.CompositeKeyExtractor(":", withAccount, httpx.IPKeyExtractor)(req))
	require.Equal(t, "192.168.1.1", httpx.CompositeKeyExtractor(":", none, httpx.IPKeyExtractor)(req))
}

func TestAccountKeyExtractor(t *testing.T) {
	req := requestFrom("192.168.1.1")
	require.Empty(t, httpx.AccountKeyExtractor(req))

	req = req.WithContext(context.WithValue(req.Context(), httpx.CtxKeyAccountID, "acc-1"))
	require.Equal(t, "acc-1", httpx.AccountKeyExtractor(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}, httpx.IPKeyExtractor)(okHandler)

		for i := range 3 {
			require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1")).Code, "request %d should succeed", i+1)
		}

		rec := serve(h, requestFrom("192.168.1.1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2})(okHandler)

		for range 2 {
			require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1")).Code)
		}
		require.Equal(t, http.StatusTooManyRequests, serve(h, requestFrom("192.168.1.1")).Code)
		require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.2")).Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1},
			func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1")).Code)
		}
	})
}

func TestRateLimitByIPAndJSONField(t *testing.T) {
	var seen []string
	h := httpx.RateLimitByIPAndJSONField(httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}, "email")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			seen = append(seen, string(b))
			w.WriteHeader(http.StatusOK)
		}),
	)

	login := func(email string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"email":"`+email+`"}`))
		req.RemoteAddr = "192.168.1.1:12345"
		return serve(h, req).Code
	}

	require.Equal(t, http.StatusOK, login("alice@example.test"))
	require.Equal(t, http.StatusOK, login("ALICE@example.test"))
	require.Equal(t, http.StatusTooManyRequests, login("alice@example.test"))
	require.Equal(t, http.StatusOK, login("bob@example.test"))

	// The handler still sees the original body.
	require.Equal(t, `{"email":"alice@example.test"}`, seen[0])
}

func TestRateLimitProfiles(t *testing.T) {
	for name, config := range map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"moderate": httpx.ModerateLimit,
		"lenient":  httpx.LenientLimit,
	} {
		t.Run(name, func(t *testing.T) {
			require.Positive(t, config.RequestsPerWindow)
			require.Positive(t, config.Window)
			require.Positive(t, config.Burst)
		})
	}

	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
}

func TestRateLimitHeaders(t *testing.T) {
	h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, httpx.IPKeyExtractor)(okHandler)

	require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1")).Code)

	rec := serve(h, requestFrom("192.168.1.1"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"error":"rate_limit_exceeded","message":"Too many requests. Please try again later."}`, rec.Body.String())
}

func BenchmarkRateLimitManyIPs(b *testing.B) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1000000, Window: time.Minute, Burst: 1000})(okHandler)

	for i := 0; b.Loop(); i++ {
		serve(h, requestFrom(fmt.Sprintf("192.168.%d.%d", i%255, (i/255)%255)))
	}
}

func TestParseRateLimitFromEnv(t *testing.T) {
	defaultConfig := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	t.Run("NoEnvVarsUsesDefaults", func(t *testing.T) {
		require.Equal(t, defaultConfig, httpx.ParseRateLimitFromEnv("TEST", defaultConfig))
	})

	t.Run("OverrideAllParameters", func(t *testing.T) {
		t.Setenv("VAULT_RATELIMIT_TEST_REQUESTS", "200")
		t.Setenv("VAULT_RATELIMIT_TEST_WINDOW_SEC", "30")
		t.Setenv("VAULT_RATELIMIT_TEST_BURST", "250")

		require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 200, Window: 30 * time.Second, Burst: 250},
			httpx.ParseRateLimitFromEnv("TEST", defaultConfig))
	})

	t.Run("InvalidValuesUseDefaults", func(t *testing.T) {
		t.Setenv("VAULT_RATELIMIT_TEST_REQUESTS", "invalid")
		t.Setenv("VAULT_RATELIMIT_TEST_WINDOW_SEC", "-10")
		t.Setenv("VAULT_RATELIMIT_TEST_BURST", "0")

		require.Equal(t, defaultConfig, httpx.ParseRateLimitFromEnv("TEST", defaultConfig))
	})
}
