package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-adoption/internal/adapters/auth/iam"
	pg "pet-adoption/internal/adapters/storage/postgres"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/config"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/platform/telemetry"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/router"
)

// @title Pet Adoption API
// @version 1.0
// @description Marketplace de adopción de mascotas: registro, ciclo de adopción y notificaciones.

// @host localhost:8080
// @BasePath /
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.

func main() {
	if err := run(); err != nil {
		logger.New(logger.Options{}).Error("server stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:  cfg.AppName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Insecure:     true,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Sin DSN => repos in-memory (dev/handoff).
	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(ctx, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.DBMigrate {
			if err := pg.Migrate(db, log); err != nil {
				return err
			}
		}
	}

	var verifier auth.AuthVerifier
	if cfg.DevAuth() {
		log.Warn("auth in dev mode: X-Debug-User-ID accepted", nil)
	} else {
		v, err := iam.NewVerifier(iam.Config{
			BaseURL: cfg.AuthBaseURL,
			APIKey:  cfg.AuthAPIKey,
			Timeout: cfg.AuthTimeout,
		})
		if err != nil {
			return err
		}
		verifier = v
	}

	h := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		DB:           db,
		Logger:       log,
		Metrics:      metrics.New(),
		RateLimiter:  middleware.NewRateLimiter(cfg.AdoptionRatePerMinute, cfg.AdoptionRateBurst),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "postgres": db != nil})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server", nil)
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
