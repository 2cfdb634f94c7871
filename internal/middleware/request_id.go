package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDHeaderEcho devuelve en la respuesta el id que generó chimw.RequestID,
// para que el cliente pueda correlacionar con los logs.
func RequestIDHeaderEcho(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			w.Header().Set(RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
