package pets

import (
	"context"
	"strings"
	"time"

	"pet-adoption/internal/platform/apperr"
	"pet-adoption/internal/platform/validation"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized  = apperr.New(apperr.KindUnauthorized, "unauthorized")
	ErrNotFound      = apperr.New(apperr.KindNotFound, "pet not found")
	ErrForbidden     = apperr.New(apperr.KindForbidden, "only the owner can modify this pet")
	ErrPetInAdoption = apperr.New(apperr.KindConflict, "pet has an active adoption request")
	ErrStatusChanged = apperr.New(apperr.KindConflict, "pet status changed concurrently")
	ErrUnknownFilter = apperr.Invalid(apperr.FieldError{Field: "category", Message: "is not a known category"})
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Category    Category `json:"category" validate:"required,oneof=dogs cats birds rabbits hamsters fish turtles guinea-pigs"`
	Breed       string   `json:"breed" validate:"required,max=100"`
	Age         string   `json:"age" validate:"required,max=50"`
	Weight      string   `json:"weight" validate:"required,max=50"`
	Gender      Gender   `json:"gender" validate:"required,oneof=Male Female"`
	Description string   `json:"description" validate:"required,max=2000"`
	Location    string   `json:"location" validate:"max=200"`
	Price       float64  `json:"price" validate:"gte=0"`
	ImageURL    string   `json:"image_url" validate:"required,max=2048"`
}

func (in CreateInput) normalized() CreateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = Category(strings.TrimSpace(string(in.Category)))
	in.Breed = strings.TrimSpace(in.Breed)
	in.Age = strings.TrimSpace(in.Age)
	in.Weight = strings.TrimSpace(in.Weight)
	in.Gender = Gender(strings.TrimSpace(string(in.Gender)))
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	if in.Location == "" {
		in.Location = DefaultLocation
	}
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Pet{}, ErrUnauthorized
	}

	in = in.normalized()
	if err := validation.Struct(in); err != nil {
		return Pet{}, err
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Status:      StatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	apply(&p, in)

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// GetMany devuelve las mascotas existentes indexadas por id; las borradas se omiten.
func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]Pet, error) {
	seen := make(map[string]struct{}, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	if len(uniq) == 0 {
		return map[string]Pet{}, nil
	}
	return s.repo.GetMany(ctx, uniq)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// ListAvailable es el listado público: solo status available, más nuevas primero.
func (s *Service) ListAvailable(ctx context.Context, f ListFilter) ([]Pet, error) {
	f.Category = Category(strings.TrimSpace(string(f.Category)))
	f.Search = strings.TrimSpace(f.Search)
	if f.Category != "" && !f.Category.Valid() {
		return nil, ErrUnknownFilter
	}
	return s.repo.ListAvailable(ctx, f)
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
type UpdateInput struct {
	Name        *string   `json:"name"`
	Category    *Category `json:"category"`
	Breed       *string   `json:"breed"`
	Age         *string   `json:"age"`
	Weight      *string   `json:"weight"`
	Gender      *Gender   `json:"gender"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	Price       *float64  `json:"price"`
	ImageURL    *string   `json:"image_url"`
}

// Update aplica el patch sobre el perfil actual y revalida el resultado completo.
// El status no es editable.
func (s *Service) Update(ctx context.Context, petID, userID string, in UpdateInput) (Pet, error) {
	if strings.TrimSpace(userID) == "" {
		return Pet{}, ErrUnauthorized
	}
	current, err := s.ownedBy(ctx, petID, userID)
	if err != nil {
		return Pet{}, err
	}

	merged := CreateInput{
		Name:        pick(in.Name, current.Name),
		Category:    pick(in.Category, current.Category),
		Breed:       pick(in.Breed, current.Breed),
		Age:         pick(in.Age, current.Age),
		Weight:      pick(in.Weight, current.Weight),
		Gender:      pick(in.Gender, current.Gender),
		Description: pick(in.Description, current.Description),
		Location:    pick(in.Location, current.Location),
		Price:       pick(in.Price, current.Price),
		ImageURL:    pick(in.ImageURL, current.ImageURL),
	}.normalized()
	if err := validation.Struct(merged); err != nil {
		return Pet{}, err
	}

	updated := current
	apply(&updated, merged)
	updated.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, updated); err != nil {
		return Pet{}, err
	}
	return updated, nil
}

// Delete borra la publicación; se rechaza mientras haya una adopción activa.
func (s *Service) Delete(ctx context.Context, petID, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthorized
	}
	p, err := s.ownedBy(ctx, petID, userID)
	if err != nil {
		return err
	}
	if p.Status == StatusPending {
		return ErrPetInAdoption
	}
	// El repo reevalúa el status de forma atómica.
	return s.repo.Delete(ctx, p.ID)
}

func apply(p *Pet, in CreateInput) {
	p.Name = in.Name
	p.Category = in.Category
	p.Breed = in.Breed
	p.Age = in.Age
	p.Weight = in.Weight
	p.Gender = in.Gender
	p.Description = in.Description
	p.Location = in.Location
	p.Price = in.Price
	p.ImageURL = in.ImageURL
}

func pick[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
