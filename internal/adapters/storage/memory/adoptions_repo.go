package memory

import (
	"context"
	"sort"

	"pet-adoption/internal/domain/adoptions"
)

// adoptionRepo son las lecturas fuera de transacción; las escrituras pasan por WithinTx.
type adoptionRepo struct {
	s *Store
}

func (r *adoptionRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.requests[id]
	if !ok {
		return adoptions.Request{}, adoptions.ErrNotFound
	}
	return row.Request, nil
}

func (r *adoptionRepo) ListByAdopter(ctx context.Context, adopterUserID string) ([]adoptions.Request, error) {
	return r.list(func(req adoptions.Request) bool { return req.AdopterUserID == adopterUserID }), nil
}

func (r *adoptionRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]adoptions.Request, error) {
	return r.list(func(req adoptions.Request) bool { return req.OwnerUserID == ownerUserID }), nil
}

func (r *adoptionRepo) list(keep func(adoptions.Request) bool) []adoptions.Request {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]requestRow, 0)
	for _, row := range r.s.requests {
		if keep(row.Request) {
			rows = append(rows, row)
		}
	}
	sortRequests(rows)

	out := make([]adoptions.Request, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Request)
	}
	return out
}

func sortRequests(rows []requestRow) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
}
