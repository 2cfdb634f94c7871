package adoptions

import (
	"strings"
	"time"

	"pet-adoption/internal/domain/pets"
)

// Status del ciclo de vida: pending -> approved -> completed, pending -> rejected.
// @Enum pending, approved, rejected, completed
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Active: la solicitud todavía retiene a la mascota.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// Request es una solicitud de adopción. OwnerUserID se copia de la mascota al crearla
// y no se recalcula; las solicitudes no se borran.
type Request struct {
	ID            string
	PetID         string
	AdopterUserID string
	OwnerUserID   string

	Reason       string
	Experience   string
	ContactName  string
	ContactEmail string
	ContactPhone string
	Message      string

	Status Status

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ApprovedAt  *time.Time
	RejectedAt  *time.Time
	CompletedAt *time.Time
}

// RequestInput es el formulario del adoptante.
type RequestInput struct {
	PetID        string `json:"pet_id" validate:"required,max=64"`
	Reason       string `json:"reason" validate:"required,max=2000"`
	Experience   string `json:"experience" validate:"required,max=2000"`
	ContactName  string `json:"contact_name" validate:"required,max=100"`
	ContactEmail string `json:"contact_email" validate:"required,email,max=254"`
	ContactPhone string `json:"contact_phone" validate:"required,max=30"`
	// Opcional; por defecto "I'm interested in adopting <nombre>".
	Message string `json:"message" validate:"max=1000"`
}

func (in RequestInput) normalized() RequestInput {
	in.PetID = strings.TrimSpace(in.PetID)
	in.Reason = strings.TrimSpace(in.Reason)
	in.Experience = strings.TrimSpace(in.Experience)
	in.ContactName = strings.TrimSpace(in.ContactName)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)
	in.Message = strings.TrimSpace(in.Message)
	return in
}

// DecideInput es la decisión del dueño sobre una solicitud pendiente.
type DecideInput struct {
	Status Status `json:"status" validate:"required,oneof=approved rejected"`
}

func DefaultMessage(petName string) string {
	return "I'm interested in adopting " + petName
}

// View es una solicitud con la mascota (nil si la publicación ya no existe)
// y el id de la otra parte.
type View struct {
	Request
	Pet                *pets.Pet
	CounterpartyUserID string
}
