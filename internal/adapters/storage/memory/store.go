package memory

import (
	"context"
	"sync"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/notifications"
	"pet-adoption/internal/domain/pets"
)

// Store guarda mascotas, solicitudes y notificaciones en memoria detrás de un único
// lock, para que una transición pueda leer y escribir las tres de forma atómica.
type Store struct {
	mu  sync.RWMutex
	seq int64

	pets          map[string]petRow
	requests      map[string]requestRow
	notifications map[string]notificationRow
}

// Las filas guardan el orden de inserción para desempatar created_at iguales.
type petRow struct {
	pets.Pet
	seq int64
}

type requestRow struct {
	adoptions.Request
	seq int64
}

type notificationRow struct {
	notifications.Notification
	seq int64
}

func NewStore() *Store {
	return &Store{
		pets:          make(map[string]petRow),
		requests:      make(map[string]requestRow),
		notifications: make(map[string]notificationRow),
	}
}

func (s *Store) Pets() pets.Repository                   { return &petRepo{s: s} }
func (s *Store) Adoptions() adoptions.Repository         { return &adoptionRepo{s: s} }
func (s *Store) Notifications() notifications.Repository { return &notificationRepo{s: s} }

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// WithinTx toma el lock de escritura durante toda la transacción. Las escrituras
// van a un overlay que se aplica solo si fn devuelve nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx adoptions.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newTx(s)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}
