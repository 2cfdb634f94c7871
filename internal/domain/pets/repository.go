package pets

import "context"

// Repository persiste publicaciones. Update nunca toca Status; el status
// se cambia solo vía adoptions.PetRegistry dentro de una transacción.
type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	// Delete devuelve ErrNotFound o ErrPetInAdoption si la mascota está pending.
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (Pet, error)
	GetMany(ctx context.Context, ids []string) (map[string]Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
	ListAvailable(ctx context.Context, f ListFilter) ([]Pet, error)
}
