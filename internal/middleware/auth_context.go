package middleware

import (
	"context"
	"net/http"
	"strings"

	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// DebugUserHeader identifica al usuario en modo dev (sin verifier).
const DebugUserHeader = "X-Debug-User-ID"

// AuthContext:
// - Si verifier != nil y viene Bearer token => intenta Verify() y setea claims.
// - Si verifier == nil => modo dev: si viene DebugUserHeader => setea claims.
// - Si no hay claims, el request sigue igual; cada handler responde 401 si las exige.
func AuthContext(verifier auth.AuthVerifier, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				claims := auth.Claims{UserID: strings.TrimSpace(r.Header.Get(DebugUserHeader))}
				next.ServeHTTP(w, withClaims(r, claims))
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Warn("token verification failed", map[string]any{
					"request_id": chimw.GetReqID(r.Context()),
					"error":      err.Error(),
				})
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, withClaims(r, claims))
		})
	}
}

func withClaims(r *http.Request, c auth.Claims) *http.Request {
	if !c.Authenticated() {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), claimsKey, c))
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok && c.Authenticated()
}

func bearerToken(authHeader string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
