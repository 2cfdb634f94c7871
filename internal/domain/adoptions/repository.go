package adoptions

import (
	"context"
	"time"

	"pet-adoption/internal/domain/notifications"
	"pet-adoption/internal/domain/pets"
)

// PetRegistry es la vista del registro de mascotas dentro de una transacción.
// FindByID bloquea la fila cuando el storage lo soporta.
type PetRegistry interface {
	FindByID(ctx context.Context, id string) (pets.Pet, error)
	// SetStatus es un compare-and-set: si el status actual no es from devuelve pets.ErrStatusChanged.
	SetStatus(ctx context.Context, id string, from, to pets.Status, at time.Time) (pets.Pet, error)
}

// RequestStore es el almacén de solicitudes dentro de una transacción.
type RequestStore interface {
	Create(ctx context.Context, r Request) error
	Update(ctx context.Context, r Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	ListActiveByPet(ctx context.Context, petID string) ([]Request, error)
}

// Tx agrupa los stores que una transición lee y escribe como una unidad.
type Tx interface {
	Pets() PetRegistry
	Requests() RequestStore
	Notifications() notifications.Sink
}

// TxRunner ejecuta fn en una transacción: commit si devuelve nil, rollback si no.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Repository son las lecturas fuera de transacción, más nuevas primero.
type Repository interface {
	GetByID(ctx context.Context, id string) (Request, error)
	ListByAdopter(ctx context.Context, adopterUserID string) ([]Request, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Request, error)
}

// PetLookup resuelve mascotas para los listados.
type PetLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]pets.Pet, error)
}

// Observer recibe el resultado de cada transición (p.ej. métricas).
type Observer interface {
	ObserveTransition(transition, outcome string)
	ObserveNotification(notificationType string)
}
