package pets

import "time"

// Category define las categorías soportadas.
// @Enum dogs, cats, birds, rabbits, hamsters, fish, turtles, guinea-pigs
type Category string

const (
	CategoryDogs       Category = "dogs"
	CategoryCats       Category = "cats"
	CategoryBirds      Category = "birds"
	CategoryRabbits    Category = "rabbits"
	CategoryHamsters   Category = "hamsters"
	CategoryFish       Category = "fish"
	CategoryTurtles    Category = "turtles"
	CategoryGuineaPigs Category = "guinea-pigs"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryDogs, CategoryCats, CategoryBirds, CategoryRabbits,
		CategoryHamsters, CategoryFish, CategoryTurtles, CategoryGuineaPigs:
		return true
	}
	return false
}

// Gender define el sexo de la mascota.
// @Enum Male, Female
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Status es la disponibilidad de la mascota. Solo el motor de adopciones lo cambia.
// @Enum available, pending, adopted
type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending" // solicitud pendiente o aprobada
	StatusAdopted   Status = "adopted"
)

const DefaultLocation = "Not specified"

// Pet es una publicación de adopción.
type Pet struct {
	ID          string
	OwnerUserID string

	Name        string
	Category    Category
	Breed       string
	Age         string // texto libre ("2 years")
	Weight      string // texto libre ("12 kg")
	Gender      Gender
	Description string
	Location    string
	Price       float64
	ImageURL    string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilter filtra el listado público de mascotas disponibles.
type ListFilter struct {
	Category Category
	// Búsqueda case-insensitive en name, breed y description.
	Search string
}
