package adoptions

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"pet-adoption/internal/domain/notifications"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/apperr"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrUnauthorized     = apperr.New(apperr.KindUnauthorized, "unauthorized")
	ErrNotFound         = apperr.New(apperr.KindNotFound, "adoption request not found")
	ErrOwnPet           = apperr.New(apperr.KindForbidden, "you cannot adopt your own pet")
	ErrDuplicateRequest = apperr.New(apperr.KindConflict, "you have already requested adoption for this pet")
	ErrPetNotAvailable  = apperr.New(apperr.KindConflict, "pet is not available for adoption")
	ErrNotOwner         = apperr.New(apperr.KindForbidden, "only the pet owner can decide this request")
	ErrNotAdopter       = apperr.New(apperr.KindForbidden, "only the adopter can complete this adoption")
	ErrNotParticipant   = apperr.New(apperr.KindForbidden, "not a participant of this adoption request")
	ErrNotPending       = apperr.New(apperr.KindInvalidState, "adoption request is not pending")
	ErrNotApproved      = apperr.New(apperr.KindInvalidState, "adoption request must be approved before completion")
)

// Nombres de transición usados en spans, logs y métricas.
const (
	opRequest  = "request"
	opDecide   = "decide"
	opComplete = "complete"
)

// Service es el motor del ciclo de adopción. Es el único que cambia el status
// de una mascota y el único que emite notificaciones.
type Service struct {
	tx   TxRunner
	repo Repository
	pets PetLookup

	observer Observer
	log      logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

type Option func(*Service)

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(tx TxRunner, repo Repository, petLookup PetLookup, opts ...Option) *Service {
	s := &Service{
		tx:     tx,
		repo:   repo,
		pets:   petLookup,
		log:    logger.Nop(),
		tracer: otel.Tracer("pet-adoption/adoptions"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request crea una solicitud pendiente, pasa la mascota a pending y avisa al dueño.
func (s *Service) Request(ctx context.Context, adopterUserID string, in RequestInput) (out Request, err error) {
	ctx, span := s.tracer.Start(ctx, "adoptions.Request")
	defer func() { s.finish(span, opRequest, err) }()

	adopterUserID = strings.TrimSpace(adopterUserID)
	if adopterUserID == "" {
		return Request{}, ErrUnauthorized
	}
	in = in.normalized()
	if err := validation.Struct(in); err != nil {
		return Request{}, err
	}
	span.SetAttributes(attribute.String("pet.id", in.PetID))

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		pet, err := tx.Pets().FindByID(ctx, in.PetID)
		if err != nil {
			return err
		}
		active, err := tx.Requests().ListActiveByPet(ctx, pet.ID)
		if err != nil {
			return err
		}
		for _, r := range active {
			if r.AdopterUserID == adopterUserID {
				return ErrDuplicateRequest
			}
		}
		if pet.Status != pets.StatusAvailable || len(active) > 0 {
			return ErrPetNotAvailable
		}
		if pet.OwnerUserID == adopterUserID {
			return ErrOwnPet
		}

		now := s.now()
		msg := in.Message
		if msg == "" {
			msg = DefaultMessage(pet.Name)
		}
		req := Request{
			ID:            uuid.NewString(),
			PetID:         pet.ID,
			AdopterUserID: adopterUserID,
			OwnerUserID:   pet.OwnerUserID,
			Reason:        in.Reason,
			Experience:    in.Experience,
			ContactName:   in.ContactName,
			ContactEmail:  in.ContactEmail,
			ContactPhone:  in.ContactPhone,
			Message:       msg,
			Status:        StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := tx.Requests().Create(ctx, req); err != nil {
			return err
		}
		if _, err := tx.Pets().SetStatus(ctx, pet.ID, pets.StatusAvailable, pets.StatusPending, now); err != nil {
			if errors.Is(err, pets.ErrStatusChanged) {
				return ErrPetNotAvailable
			}
			return err
		}
		if err := emit(ctx, tx, notifications.EmitInput{
			UserID:     pet.OwnerUserID,
			Type:       notifications.TypeAdoptionRequest,
			PetID:      pet.ID,
			PetName:    pet.Name,
			AdoptionID: req.ID,
		}, now); err != nil {
			return err
		}

		out = req
		return nil
	})
	if err != nil {
		return Request{}, err
	}

	s.notified(notifications.TypeAdoptionRequest)
	return out, nil
}

// Decide aprueba o rechaza una solicitud pendiente. Solo el dueño registrado en la solicitud.
func (s *Service) Decide(ctx context.Context, requestID, userID string, in DecideInput) (out Request, err error) {
	ctx, span := s.tracer.Start(ctx, "adoptions.Decide")
	defer func() { s.finish(span, opDecide, err) }()

	userID = strings.TrimSpace(userID)
	requestID = strings.TrimSpace(requestID)
	if userID == "" {
		return Request{}, ErrUnauthorized
	}
	in.Status = Status(strings.TrimSpace(string(in.Status)))
	if err := validation.Struct(in); err != nil {
		return Request{}, err
	}
	if requestID == "" {
		return Request{}, ErrNotFound
	}
	span.SetAttributes(
		attribute.String("adoption.id", requestID),
		attribute.String("adoption.decision", string(in.Status)),
	)

	var sent notifications.Type
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		req, err := tx.Requests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.OwnerUserID != userID {
			return ErrNotOwner
		}
		if req.Status != StatusPending {
			return ErrNotPending
		}

		now := s.now()
		var (
			petTo pets.Status
			kind  notifications.Type
		)
		switch in.Status {
		case StatusApproved:
			req.ApprovedAt = &now
			petTo = pets.StatusPending
			kind = notifications.TypeAdoptionApproved
		default:
			req.RejectedAt = &now
			petTo = pets.StatusAvailable
			kind = notifications.TypeAdoptionRejected
		}
		req.Status = in.Status
		req.UpdatedAt = now

		if err := tx.Requests().Update(ctx, req); err != nil {
			return err
		}
		pet, err := tx.Pets().SetStatus(ctx, req.PetID, pets.StatusPending, petTo, now)
		if err != nil {
			return err
		}
		if err := emit(ctx, tx, notifications.EmitInput{
			UserID:     req.AdopterUserID,
			Type:       kind,
			PetID:      req.PetID,
			PetName:    pet.Name,
			AdoptionID: req.ID,
		}, now); err != nil {
			return err
		}

		out = req
		sent = kind
		return nil
	})
	if err != nil {
		return Request{}, err
	}

	s.notified(sent)
	return out, nil
}

// Complete finaliza una adopción aprobada. Solo el adoptante.
func (s *Service) Complete(ctx context.Context, requestID, userID string) (out Request, err error) {
	ctx, span := s.tracer.Start(ctx, "adoptions.Complete")
	defer func() { s.finish(span, opComplete, err) }()

	userID = strings.TrimSpace(userID)
	requestID = strings.TrimSpace(requestID)
	if userID == "" {
		return Request{}, ErrUnauthorized
	}
	if requestID == "" {
		return Request{}, ErrNotFound
	}
	span.SetAttributes(attribute.String("adoption.id", requestID))

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		req, err := tx.Requests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.AdopterUserID != userID {
			return ErrNotAdopter
		}
		if req.Status != StatusApproved {
			return ErrNotApproved
		}

		now := s.now()
		req.Status = StatusCompleted
		req.CompletedAt = &now
		req.UpdatedAt = now

		if err := tx.Requests().Update(ctx, req); err != nil {
			return err
		}
		pet, err := tx.Pets().SetStatus(ctx, req.PetID, pets.StatusPending, pets.StatusAdopted, now)
		if err != nil {
			return err
		}
		if err := emit(ctx, tx, notifications.EmitInput{
			UserID:     req.OwnerUserID,
			Type:       notifications.TypeAdoptionCompleted,
			PetID:      req.PetID,
			PetName:    pet.Name,
			AdoptionID: req.ID,
		}, now); err != nil {
			return err
		}

		out = req
		return nil
	})
	if err != nil {
		return Request{}, err
	}

	s.notified(notifications.TypeAdoptionCompleted)
	return out, nil
}

// Get devuelve la solicitud si userID es el adoptante o el dueño.
func (s *Service) Get(ctx context.Context, requestID, userID string) (View, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return View{}, ErrUnauthorized
	}
	req, err := s.repo.GetByID(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return View{}, err
	}
	if req.AdopterUserID != userID && req.OwnerUserID != userID {
		return View{}, ErrNotParticipant
	}
	views, err := s.join(ctx, []Request{req}, userID)
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

// ListForAdopter son las solicitudes enviadas por userID.
func (s *Service) ListForAdopter(ctx context.Context, userID string) ([]View, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	items, err := s.repo.ListByAdopter(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, items, userID)
}

// ListForOwner son las solicitudes recibidas por userID sobre sus mascotas.
func (s *Service) ListForOwner(ctx context.Context, userID string) ([]View, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	items, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, items, userID)
}

func (s *Service) join(ctx context.Context, items []Request, viewer string) ([]View, error) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	ids := make([]string, 0, len(items))
	for _, r := range items {
		ids = append(ids, r.PetID)
	}
	byID := map[string]pets.Pet{}
	if s.pets != nil && len(ids) > 0 {
		var err error
		byID, err = s.pets.GetMany(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	out := make([]View, 0, len(items))
	for _, r := range items {
		v := View{Request: r, CounterpartyUserID: r.OwnerUserID}
		if r.OwnerUserID == viewer {
			v.CounterpartyUserID = r.AdopterUserID
		}
		if p, ok := byID[r.PetID]; ok {
			v.Pet = &p
		}
		out = append(out, v)
	}
	return out, nil
}

func emit(ctx context.Context, tx Tx, in notifications.EmitInput, now time.Time) error {
	return tx.Notifications().Create(ctx, notifications.New(in, now))
}

// notified se llama solo después del commit.
func (s *Service) notified(t notifications.Type) {
	if s.observer != nil && t != "" {
		s.observer.ObserveNotification(string(t))
	}
}

func (s *Service) finish(span trace.Span, op string, err error) {
	defer span.End()

	outcome := "ok"
	if err != nil {
		kind := apperr.KindOf(err)
		outcome = string(kind)

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		fields := map[string]any{"transition": op, "kind": outcome, "error": err.Error()}
		if kind == apperr.KindInternal {
			s.log.Error("adoption transition failed", fields)
		} else {
			s.log.Debug("adoption transition rejected", fields)
		}
	}

	if s.observer != nil {
		s.observer.ObserveTransition(op, outcome)
	}
}
