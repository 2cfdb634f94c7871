package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption/internal/domain/pets"
)

// PetsRepo implementa pets.Repository y, con lock=true dentro de una tx, adoptions.PetRegistry.
type PetsRepo struct {
	db   dbtx
	lock bool
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, owner_user_id,
	name, category, breed, age, weight, gender,
	description, location, price, image_url,
	status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	err := row.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Name,
		&p.Category,
		&p.Breed,
		&p.Age,
		&p.Weight,
		&p.Gender,
		&p.Description,
		&p.Location,
		&p.Price,
		&p.ImageURL,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		string(p.Category),
		p.Breed,
		p.Age,
		p.Weight,
		string(p.Gender),
		p.Description,
		p.Location,
		p.Price,
		p.ImageURL,
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pet: %w", err)
	}
	return nil
}

// Update nunca escribe status: eso lo hace SetStatus dentro de una transición.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			category = $3,
			breed = $4,
			age = $5,
			weight = $6,
			gender = $7,
			description = $8,
			location = $9,
			price = $10,
			image_url = $11,
			updated_at = $12
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		string(p.Category),
		p.Breed,
		p.Age,
		p.Weight,
		string(p.Gender),
		p.Description,
		p.Location,
		p.Price,
		p.ImageURL,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update pet: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

// Delete evalúa el guard de status en la misma sentencia.
func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1 AND status <> 'pending'`, id)
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return pets.ErrNotFound
	}
	return pets.ErrPetInAdoption
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	q := `SELECT ` + petColumns + ` FROM pets WHERE id = $1`
	if r.lock {
		q += ` FOR UPDATE`
	}

	p, err := scanPet(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, fmt.Errorf("get pet: %w", err)
	}
	return p, nil
}

// FindByID es GetByID con la semántica de PetRegistry (bloquea si lock=true).
func (r *PetsRepo) FindByID(ctx context.Context, id string) (pets.Pet, error) {
	return r.GetByID(ctx, id)
}

// SetStatus es un compare-and-set sobre status.
func (r *PetsRepo) SetStatus(ctx context.Context, id string, from, to pets.Status, at time.Time) (pets.Pet, error) {
	p, err := scanPet(r.db.QueryRowContext(ctx, `
		UPDATE pets
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
		RETURNING `+petColumns,
		id, string(from), string(to), at,
	))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, fmt.Errorf("set pet status: %w", err)
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return pets.Pet{}, err
	}
	if !exists {
		return pets.Pet{}, pets.ErrNotFound
	}
	return pets.Pet{}, pets.ErrStatusChanged
}

func (r *PetsRepo) GetMany(ctx context.Context, ids []string) (map[string]pets.Pet, error) {
	out := make(map[string]pets.Pet, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+petColumns+` FROM pets WHERE id IN (`+placeholders(1, len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("get pets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}
	return r.query(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
	`, ownerUserID)
}

func (r *PetsRepo) ListAvailable(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	q := `SELECT ` + petColumns + ` FROM pets WHERE status = 'available'`
	args := make([]any, 0, 2)

	if f.Category != "" {
		args = append(args, string(f.Category))
		q += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		q += fmt.Sprintf(` AND (name ILIKE $%d OR breed ILIKE $%d OR description ILIKE $%d)`, n, n, n)
	}
	q += ` ORDER BY created_at DESC`

	return r.query(ctx, q, args...)
}

func (r *PetsRepo) query(ctx context.Context, q string, args ...any) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PetsRepo) exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM pets WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check pet: %w", err)
	}
	return true, nil
}

// escapeLike escapa los comodines de LIKE; el escape por defecto es backslash.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
