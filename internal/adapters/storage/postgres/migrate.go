package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"pet-adoption/internal/adapters/storage/postgres/migrations"
	"pet-adoption/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrate aplica las migraciones embebidas. golang-migrate toma un advisory lock,
// así que varias instancias pueden arrancar a la vez.
func Migrate(db *sql.DB, log logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("database schema up to date", nil)
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	default:
		log.Info("database migrations applied", nil)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	log.Info("database schema version", map[string]any{"version": version, "dirty": dirty})
	return nil
}
