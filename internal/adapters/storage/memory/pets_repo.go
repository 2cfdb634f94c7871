package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-adoption/internal/domain/pets"
)

type petRepo struct {
	s *Store
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.s.pets[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.s.pets[p.ID] = petRow{Pet: p, seq: r.s.nextSeq()}
	return nil
}

// Update reemplaza el perfil pero conserva el status almacenado.
func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, exists := r.s.pets[p.ID]
	if !exists {
		return pets.ErrNotFound
	}
	p.Status = row.Status
	p.OwnerUserID = row.OwnerUserID
	p.CreatedAt = row.CreatedAt
	row.Pet = p
	r.s.pets[p.ID] = row
	return nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, exists := r.s.pets[id]
	if !exists {
		return pets.ErrNotFound
	}
	if row.Status == pets.StatusPending {
		return pets.ErrPetInAdoption
	}
	delete(r.s.pets, id)
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return row.Pet, nil
}

func (r *petRepo) GetMany(ctx context.Context, ids []string) (map[string]pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]pets.Pet, len(ids))
	for _, id := range ids {
		if row, ok := r.s.pets[id]; ok {
			out[id] = row.Pet
		}
	}
	return out, nil
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	return r.list(func(p pets.Pet) bool { return p.OwnerUserID == ownerUserID }), nil
}

func (r *petRepo) ListAvailable(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	q := strings.ToLower(f.Search)
	return r.list(func(p pets.Pet) bool {
		if p.Status != pets.StatusAvailable {
			return false
		}
		if f.Category != "" && p.Category != f.Category {
			return false
		}
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Breed), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	}), nil
}

// list filtra y ordena por created_at desc (más nuevas primero).
func (r *petRepo) list(keep func(pets.Pet) bool) []pets.Pet {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]petRow, 0)
	for _, row := range r.s.pets {
		if keep(row.Pet) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]pets.Pet, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Pet)
	}
	return out
}
