package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"pet-adoption/internal/platform/apperr"
	"pet-adoption/internal/platform/httpjson"
	"pet-adoption/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

var errPanic = apperr.New(apperr.KindInternal, "internal error")

// Recover reemplaza chimw.Recoverer: loguea el panic con el request id y
// responde con el cuerpo de error JSON estándar.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				log.Error("panic recovered", map[string]any{
					"request_id": chimw.GetReqID(r.Context()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"panic":      rec,
					"stack":      string(debug.Stack()),
				})
				httpjson.WriteError(w, errPanic)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
