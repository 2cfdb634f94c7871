package router

import (
	"database/sql"
	"net/http"

	_ "pet-adoption/docs" // swagger docs

	mem "pet-adoption/internal/adapters/storage/memory"
	pg "pet-adoption/internal/adapters/storage/postgres"
	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/notifications"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger  logger.Logger
	Metrics *metrics.Metrics

	// Limita POST /api/adoptions; nil => sin límite.
	RateLimiter *middleware.RateLimiter
}

// stores agrupa lo que cada backend de storage entrega a los services.
type stores struct {
	tx            adoptions.TxRunner
	pets          pets.Repository
	adoptions     adoptions.Repository
	notifications notifications.Repository
}

func newStores(db *sql.DB) stores {
	if db != nil {
		s := pg.NewStore(db)
		return stores{tx: s, pets: s.Pets(), adoptions: s.Adoptions(), notifications: s.Notifications()}
	}
	s := mem.NewStore()
	return stores{tx: s, pets: s.Pets(), adoptions: s.Adoptions(), notifications: s.Notifications()}
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	// Externo: cubre pánicos en auth y logging.
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestIDHeaderEcho)

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))
	r.Use(middleware.RequestLogger(log, m))
	// Interno: el 500 queda registrado por el RequestLogger.
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	st := newStores(opts.DB)

	// Services por módulo
	petsSvc := pets.NewService(st.pets)
	notificationsSvc := notifications.NewService(st.notifications, petsSvc)
	adoptionsSvc := adoptions.NewService(st.tx, st.adoptions, petsSvc,
		adoptions.WithObserver(m),
		adoptions.WithLogger(log),
	)

	var requestMW []func(http.Handler) http.Handler
	if opts.RateLimiter != nil {
		requestMW = append(requestMW, opts.RateLimiter.Middleware)
	}

	// Rutas por módulo
	r.Route("/api", func(api chi.Router) {
		pets.RegisterRoutes(api, petsSvc)
		adoptions.RegisterRoutes(api, adoptionsSvc, requestMW...)
		notifications.RegisterRoutes(api, notificationsSvc)
	})

	return r
}
