package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Type es el tipo de notificación emitida por una transición de adopción.
// @Enum adoption_request, adoption_approved, adoption_rejected, adoption_completed
type Type string

const (
	TypeAdoptionRequest   Type = "adoption_request"
	TypeAdoptionApproved  Type = "adoption_approved"
	TypeAdoptionRejected  Type = "adoption_rejected"
	TypeAdoptionCompleted Type = "adoption_completed"
)

// ActionRequired: el destinatario tiene que hacer algo (decidir o finalizar).
func (t Type) ActionRequired() bool {
	switch t {
	case TypeAdoptionRequest, TypeAdoptionApproved:
		return true
	default:
		return false
	}
}

func (t Type) Valid() bool {
	switch t {
	case TypeAdoptionRequest, TypeAdoptionApproved, TypeAdoptionRejected, TypeAdoptionCompleted:
		return true
	}
	return false
}

// DefaultMessage arma el texto que ve el destinatario.
func DefaultMessage(t Type, petName string) string {
	switch t {
	case TypeAdoptionRequest:
		return "New adoption request for " + petName
	case TypeAdoptionApproved:
		return "Your adoption request for " + petName + " has been approved!"
	case TypeAdoptionRejected:
		return "Your adoption request for " + petName + " has been rejected"
	case TypeAdoptionCompleted:
		return "Adoption of " + petName + " has been completed"
	default:
		return petName
	}
}

// Notification es un mensaje en el buzón de un usuario.
type Notification struct {
	ID         string
	UserID     string // destinatario
	Type       Type
	PetID      string
	AdoptionID string // opcional

	Message        string
	Read           bool
	ActionRequired bool

	CreatedAt time.Time
}

// EmitInput es lo que el motor de adopciones entrega al sink.
type EmitInput struct {
	UserID     string
	Type       Type
	PetID      string
	PetName    string
	AdoptionID string
}

// New construye la notificación con id, read=false y actionRequired derivado del tipo.
func New(in EmitInput, now time.Time) Notification {
	return Notification{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		Type:           in.Type,
		PetID:          in.PetID,
		AdoptionID:     in.AdoptionID,
		Message:        DefaultMessage(in.Type, in.PetName),
		Read:           false,
		ActionRequired: in.Type.ActionRequired(),
		CreatedAt:      now,
	}
}
