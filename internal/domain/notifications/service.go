package notifications

import (
	"context"
	"strings"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/apperr"
)

// ListLimit es el máximo de notificaciones que devuelve List. Es contrato de la API.
const ListLimit = 50

var (
	ErrUnauthorized = apperr.New(apperr.KindUnauthorized, "unauthorized")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "notification not found")
	ErrForbidden    = apperr.New(apperr.KindForbidden, "notification belongs to another user")
)

// PetLookup resuelve el resumen de mascota para cada item; las borradas se omiten.
type PetLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]pets.Pet, error)
}

type Service struct {
	repo Repository
	pets PetLookup
}

func NewService(repo Repository, petLookup PetLookup) *Service {
	return &Service{
		repo: repo,
		pets: petLookup,
	}
}

// Item es una notificación con el resumen de la mascota, si todavía existe.
type Item struct {
	Notification
	Pet *PetSummary
}

type PetSummary struct {
	ID       string
	Name     string
	ImageURL string
}

type Inbox struct {
	Items       []Item
	UnreadCount int
}

// List devuelve las ListLimit más recientes y el total de no leídas (sin límite).
func (s *Service) List(ctx context.Context, userID string) (Inbox, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Inbox{}, ErrUnauthorized
	}

	items, err := s.repo.ListByUser(ctx, userID, ListLimit)
	if err != nil {
		return Inbox{}, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return Inbox{}, err
	}

	byID := map[string]pets.Pet{}
	if s.pets != nil && len(items) > 0 {
		ids := make([]string, 0, len(items))
		for _, n := range items {
			ids = append(ids, n.PetID)
		}
		byID, err = s.pets.GetMany(ctx, ids)
		if err != nil {
			return Inbox{}, err
		}
	}

	out := make([]Item, 0, len(items))
	for _, n := range items {
		it := Item{Notification: n}
		if p, ok := byID[n.PetID]; ok {
			it.Pet = &PetSummary{ID: p.ID, Name: p.Name, ImageURL: p.ImageURL}
		}
		out = append(out, it)
	}

	return Inbox{Items: out, UnreadCount: unread}, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID string) (Notification, error) {
	n, err := s.owned(ctx, id, userID)
	if err != nil {
		return Notification{}, err
	}
	// Idempotente
	if n.Read {
		return n, nil
	}
	if err := s.repo.MarkRead(ctx, n.ID); err != nil {
		return Notification{}, err
	}
	n.Read = true
	return n, nil
}

// MarkAllRead devuelve cuántas notificaciones cambiaron.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrUnauthorized
	}
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	n, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, n.ID)
}

func (s *Service) owned(ctx context.Context, id, userID string) (Notification, error) {
	id = strings.TrimSpace(id)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Notification{}, ErrUnauthorized
	}
	if id == "" {
		return Notification{}, ErrNotFound
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != userID {
		return Notification{}, ErrForbidden
	}
	return n, nil
}
