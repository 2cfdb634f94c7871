package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/notifications"
)

// Store implementa adoptions.TxRunner sobre *sql.DB.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Pets() *PetsRepo                   { return &PetsRepo{db: s.db} }
func (s *Store) Adoptions() *AdoptionsRepo         { return &AdoptionsRepo{db: s.db} }
func (s *Store) Notifications() *NotificationsRepo { return &NotificationsRepo{db: s.db} }

// WithinTx corre fn en una transacción read committed; las filas que la transición
// toca se bloquean con SELECT ... FOR UPDATE.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx adoptions.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// Rollback después de Commit es no-op (sql.ErrTxDone).
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(ctx, &tx{q: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type tx struct {
	q dbtx
}

func (t *tx) Pets() adoptions.PetRegistry {
	return &PetsRepo{db: t.q, lock: true}
}

func (t *tx) Requests() adoptions.RequestStore {
	return &AdoptionsRepo{db: t.q, lock: true}
}

func (t *tx) Notifications() notifications.Sink {
	return &NotificationsRepo{db: t.q}
}
