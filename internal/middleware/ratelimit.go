package middleware

import (
	"net/http"
	"sync"
	"time"

	"pet-adoption/internal/platform/apperr"
	"pet-adoption/internal/platform/httpjson"

	"golang.org/x/time/rate"
)

var errRateLimited = apperr.New(apperr.KindRateLimited, "too many requests, try again later")

// Tiempo sin uso tras el cual se descarta el bucket de un usuario.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter mantiene un token bucket por usuario autenticado.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter con perMinute <= 0 devuelve un limiter que deja pasar todo.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    limit,
		burst:    burst,
		idleTTL:  limiterIdleTTL,
		now:      time.Now,
	}
}

func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	l.sweep(now)
	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()
	return e.lim.AllowN(now, 1)
}

// sweep descarta buckets inactivos; corre como mucho una vez por idleTTL. Requiere l.mu.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) >= l.idleTTL {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}

// Middleware limita por user id. Sin claims deja pasar: el handler responde 401.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if !l.Allow(claims.UserID) {
			w.Header().Set("Retry-After", "60")
			httpjson.WriteError(w, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}
