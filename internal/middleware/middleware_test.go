package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubVerifier(claims auth.Claims) auth.VerifierFunc {
	return func(_ context.Context, token string) (auth.Claims, error) {
		if token != "good" {
			return auth.Claims{}, errors.New("bad token")
		}
		return claims, nil
	}
}

func whoami(w http.ResponseWriter, r *http.Request) {
	c, ok := GetClaims(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	_, _ = w.Write([]byte(c.UserID))
}

func TestAuthContext_DevHeader(t *testing.T) {
	h := AuthContext(nil, nil)(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DebugUserHeader, "u-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "u-1", rec.Body.String())

	// Header en blanco no autentica.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DebugUserHeader, "   ")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthContext_Verifier(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf})
	h := AuthContext(stubVerifier(auth.Claims{UserID: "u-2"}), log)(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "u-2", rec.Body.String())

	// Con verifier configurado el header de debug se ignora.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, buf.String(), "token verification failed")
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("abc"))
	assert.Equal(t, "", bearerToken(""))
}

func TestRateLimiter_PerUser(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := AuthContext(nil, nil)(rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Debug-User-ID", user)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, send("a"))
	assert.Equal(t, http.StatusCreated, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	// Otro usuario tiene su propio bucket.
	assert.Equal(t, http.StatusCreated, send("b"))
}

func TestRateLimiter_UnauthenticatedPassesThrough(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	h := chimw.RealIP(AuthContext(nil, nil)(rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))))

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	assert.Empty(t, rl.limiters)
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))
	require.True(t, rl.Allow("b"))
	assert.Len(t, rl.limiters, 2)

	now = now.Add(limiterIdleTTL)
	require.True(t, rl.Allow("c"))
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "c")

	// "a" vuelve con bucket nuevo.
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("k"))
	}
}

type recordingObserver struct {
	method, route, status string
}

func (o *recordingObserver) ObserveHTTP(method, route, status string, _ float64) {
	o.method, o.route, o.status = method, route, status
}

func TestRequestLogger_UsesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	obs := &recordingObserver{}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(RequestIDHeaderEcho)
	r.Use(RequestLogger(logger.New(logger.Options{Output: &buf}), obs))
	r.Get("/api/pets/{petID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pets/123", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "/api/pets/{petID}", obs.route)
	assert.Equal(t, "404", obs.status)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "route=/api/pets/{petID}")
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(logger.New(logger.Options{Output: &buf}))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"internal"`)
	assert.Contains(t, buf.String(), "panic recovered")
}
