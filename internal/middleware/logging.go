package middleware

import (
	"net/http"
	"strconv"
	"time"

	"pet-adoption/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// HTTPObserver recibe una observación por request (ver platform/metrics).
type HTTPObserver interface {
	ObserveHTTP(method, route, status string, seconds float64)
}

// RequestLogger loguea cada request con su route pattern de chi y alimenta obs.
// Va después de AuthContext para poder loguear el user id.
func RequestLogger(log logger.Logger, obs HTTPObserver) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			elapsed := time.Since(start)

			fields := map[string]any{
				"request_id":  chimw.GetReqID(r.Context()),
				"method":      r.Method,
				"route":       route,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": elapsed.Milliseconds(),
			}
			if c, ok := GetClaims(r.Context()); ok {
				fields["user_id"] = c.UserID
			}

			switch {
			case status >= 500:
				log.Error("http request", fields)
			case status >= 400:
				log.Warn("http request", fields)
			default:
				log.Info("http request", fields)
			}

			if obs != nil {
				obs.ObserveHTTP(r.Method, route, strconv.Itoa(status), elapsed.Seconds())
			}
		})
	}
}

// routePattern evita cardinalidad alta en métricas: usa el patrón, no el path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
