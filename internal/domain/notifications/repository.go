package notifications

import "context"

// Sink es la única vía de escritura que usa el motor de adopciones.
// Se invoca dentro de la misma transacción que la transición.
type Sink interface {
	Create(ctx context.Context, n Notification) error
}

type Repository interface {
	Sink

	GetByID(ctx context.Context, id string) (Notification, error)
	// ListByUser devuelve las más recientes primero, hasta limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)

	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id string) error
}
