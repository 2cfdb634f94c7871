package memory

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/notifications"
	"pet-adoption/internal/domain/pets"
)

// tx corre con Store.mu tomado; lee overlay primero y luego el estado base.
type tx struct {
	s *Store

	pets          map[string]petRow
	requests      map[string]requestRow
	notifications []notifications.Notification
}

func newTx(s *Store) *tx {
	return &tx{
		s:        s,
		pets:     make(map[string]petRow),
		requests: make(map[string]requestRow),
	}
}

func (t *tx) Pets() adoptions.PetRegistry       { return txPets{t} }
func (t *tx) Requests() adoptions.RequestStore  { return txRequests{t} }
func (t *tx) Notifications() notifications.Sink { return txNotifications{t} }

func (t *tx) commit() {
	for id, row := range t.pets {
		t.s.pets[id] = row
	}
	for id, row := range t.requests {
		t.s.requests[id] = row
	}
	for _, n := range t.notifications {
		// ids ya validados en Create
		_ = insertNotification(t.s, n)
	}
}

type txPets struct{ t *tx }

func (p txPets) row(id string) (petRow, bool) {
	if row, ok := p.t.pets[id]; ok {
		return row, true
	}
	row, ok := p.t.s.pets[id]
	return row, ok
}

func (p txPets) FindByID(ctx context.Context, id string) (pets.Pet, error) {
	row, ok := p.row(id)
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return row.Pet, nil
}

func (p txPets) SetStatus(ctx context.Context, id string, from, to pets.Status, at time.Time) (pets.Pet, error) {
	row, ok := p.row(id)
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	if row.Status != from {
		return pets.Pet{}, pets.ErrStatusChanged
	}
	row.Status = to
	row.UpdatedAt = at
	p.t.pets[id] = row
	return row.Pet, nil
}

type txRequests struct{ t *tx }

func (r txRequests) row(id string) (requestRow, bool) {
	if row, ok := r.t.requests[id]; ok {
		return row, true
	}
	row, ok := r.t.s.requests[id]
	return row, ok
}

func (r txRequests) Create(ctx context.Context, req adoptions.Request) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("adoption request id required")
	}
	if _, exists := r.row(req.ID); exists {
		return errors.New("adoption request already exists")
	}
	r.t.requests[req.ID] = requestRow{Request: req, seq: r.t.s.nextSeq()}
	return nil
}

func (r txRequests) Update(ctx context.Context, req adoptions.Request) error {
	row, exists := r.row(req.ID)
	if !exists {
		return adoptions.ErrNotFound
	}
	row.Request = req
	r.t.requests[req.ID] = row
	return nil
}

func (r txRequests) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	row, ok := r.row(id)
	if !ok {
		return adoptions.Request{}, adoptions.ErrNotFound
	}
	return row.Request, nil
}

func (r txRequests) ListActiveByPet(ctx context.Context, petID string) ([]adoptions.Request, error) {
	rows := make([]requestRow, 0)
	for id, row := range r.t.s.requests {
		if over, ok := r.t.requests[id]; ok {
			row = over
		}
		if row.PetID == petID && row.Status.Active() {
			rows = append(rows, row)
		}
	}
	for id, row := range r.t.requests {
		if _, inBase := r.t.s.requests[id]; inBase {
			continue
		}
		if row.PetID == petID && row.Status.Active() {
			rows = append(rows, row)
		}
	}
	sortRequests(rows)

	out := make([]adoptions.Request, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Request)
	}
	return out, nil
}

type txNotifications struct{ t *tx }

func (n txNotifications) Create(ctx context.Context, notif notifications.Notification) error {
	if strings.TrimSpace(notif.ID) == "" {
		return errors.New("notification id required")
	}
	if _, exists := n.t.s.notifications[notif.ID]; exists {
		return errors.New("notification already exists")
	}
	for _, pending := range n.t.notifications {
		if pending.ID == notif.ID {
			return errors.New("notification already exists")
		}
	}
	n.t.notifications = append(n.t.notifications, notif)
	return nil
}
