package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pet-adoption/internal/domain/adoptions"
)

// AdoptionsRepo implementa adoptions.Repository y, dentro de una tx, adoptions.RequestStore.
type AdoptionsRepo struct {
	db   dbtx
	lock bool
}

func NewAdoptionsRepo(db *sql.DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db}
}

const requestColumns = `
	id, pet_id, adopter_user_id, owner_user_id,
	reason, experience, contact_name, contact_email, contact_phone, message,
	status, created_at, updated_at, approved_at, rejected_at, completed_at`

func scanRequest(row rowScanner) (adoptions.Request, error) {
	var (
		r                              adoptions.Request
		approvedAt, rejectedAt, doneAt sql.NullTime
	)
	if err := row.Scan(
		&r.ID,
		&r.PetID,
		&r.AdopterUserID,
		&r.OwnerUserID,
		&r.Reason,
		&r.Experience,
		&r.ContactName,
		&r.ContactEmail,
		&r.ContactPhone,
		&r.Message,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
		&approvedAt,
		&rejectedAt,
		&doneAt,
	); err != nil {
		return adoptions.Request{}, err
	}
	r.ApprovedAt = fromNullTime(approvedAt)
	r.RejectedAt = fromNullTime(rejectedAt)
	r.CompletedAt = fromNullTime(doneAt)
	return r, nil
}

// Create traduce la violación del índice "una solicitud activa por mascota" a conflicto.
func (r *AdoptionsRepo) Create(ctx context.Context, req adoptions.Request) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adoption_requests (`+requestColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		req.ID,
		req.PetID,
		req.AdopterUserID,
		req.OwnerUserID,
		req.Reason,
		req.Experience,
		req.ContactName,
		req.ContactEmail,
		req.ContactPhone,
		req.Message,
		string(req.Status),
		req.CreatedAt,
		req.UpdatedAt,
		toNullTime(req.ApprovedAt),
		toNullTime(req.RejectedAt),
		toNullTime(req.CompletedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return adoptions.ErrPetNotAvailable
		}
		return fmt.Errorf("insert adoption request: %w", err)
	}
	return nil
}

// Update solo escribe status y timestamps; el resto de la solicitud es inmutable.
func (r *AdoptionsRepo) Update(ctx context.Context, req adoptions.Request) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE adoption_requests
		SET
			status = $2,
			updated_at = $3,
			approved_at = $4,
			rejected_at = $5,
			completed_at = $6
		WHERE id = $1
	`,
		req.ID,
		string(req.Status),
		req.UpdatedAt,
		toNullTime(req.ApprovedAt),
		toNullTime(req.RejectedAt),
		toNullTime(req.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("update adoption request: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return adoptions.ErrNotFound
	}
	return nil
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adoptions.Request{}, adoptions.ErrNotFound
	}

	q := `SELECT ` + requestColumns + ` FROM adoption_requests WHERE id = $1`
	if r.lock {
		q += ` FOR UPDATE`
	}

	req, err := scanRequest(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return adoptions.Request{}, adoptions.ErrNotFound
		}
		return adoptions.Request{}, fmt.Errorf("get adoption request: %w", err)
	}
	return req, nil
}

func (r *AdoptionsRepo) ListActiveByPet(ctx context.Context, petID string) ([]adoptions.Request, error) {
	return r.query(ctx, `
		SELECT `+requestColumns+`
		FROM adoption_requests
		WHERE pet_id = $1 AND status IN ('pending', 'approved')
		ORDER BY created_at DESC
	`, petID)
}

func (r *AdoptionsRepo) ListByAdopter(ctx context.Context, adopterUserID string) ([]adoptions.Request, error) {
	return r.query(ctx, `
		SELECT `+requestColumns+`
		FROM adoption_requests
		WHERE adopter_user_id = $1
		ORDER BY created_at DESC
	`, adopterUserID)
}

func (r *AdoptionsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]adoptions.Request, error) {
	return r.query(ctx, `
		SELECT `+requestColumns+`
		FROM adoption_requests
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
	`, ownerUserID)
}

func (r *AdoptionsRepo) query(ctx context.Context, q string, args ...any) ([]adoptions.Request, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list adoption requests: %w", err)
	}
	defer rows.Close()

	out := make([]adoptions.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
