package pets

import (
	"net/http"
	"strings"
	"time"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/httpjson"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		// Públicas
		pr.Get("/", listAvailableHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))

		// Owner
		pr.Post("/", createPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		// Alias para clientes existentes; misma semántica de patch.
		pr.Put("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
	})

	r.Get("/me/pets", listMyPetsHandler(svc))
}

type petResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Breed       string    `json:"breed"`
	Age         string    `json:"age"`
	Weight      string    `json:"weight"`
	Gender      Gender    `json:"gender"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type petListResponse struct {
	Count int           `json:"count"`
	Pets  []petResponse `json:"pets"`
}

// listAvailableHandler godoc
// @Summary Listar mascotas disponibles
// @Description Listado público de mascotas con status `available`, más nuevas primero. Permite filtrar por categoría y buscar texto en nombre, raza y descripción.
// @Tags pets
// @Produce json
// @Param category query string false "Categoría (dogs, cats, birds, rabbits, hamsters, fish, turtles, guinea-pigs)"
// @Param search query string false "Texto a buscar (case-insensitive)"
// @Success 200 {object} petListResponse
// @Failure 400 {object} httpjson.ErrorBody "categoría desconocida"
// @Failure 500 {object} httpjson.ErrorBody
// @Router /api/pets [get]
func listAvailableHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListAvailable(r.Context(), ListFilter{
			Category: Category(r.URL.Query().Get("category")),
			Search:   r.URL.Query().Get("search"),
		})
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toListResponse(items))
	}
}

// getPetHandler godoc
// @Summary Ver mascota
// @Description Detalle público de una publicación, en cualquier status.
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {object} httpjson.ErrorBody "pet not found"
// @Router /api/pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// createPetHandler godoc
// @Summary Publicar mascota
// @Description Crea una publicación en status `available`. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body CreateInput true "Datos de la mascota"
// @Success 201 {object} petResponse
// @Failure 400 {object} httpjson.ErrorBody "invalid json / campos inválidos"
// @Failure 401 {object} httpjson.ErrorBody "unauthorized"
// @Router /api/pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		var in CreateInput
		if err := httpjson.Decode(r, &in); err != nil {
			httpjson.WriteError(w, err)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description PATCH (o PUT, alias) del perfil; solo el dueño. El status no es editable.
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param payload body UpdateInput true "Campos a modificar"
// @Success 200 {object} petResponse
// @Failure 400 {object} httpjson.ErrorBody
// @Failure 401 {object} httpjson.ErrorBody
// @Failure 403 {object} httpjson.ErrorBody
// @Failure 404 {object} httpjson.ErrorBody
// @Router /api/pets/{petID} [patch]
// @Router /api/pets/{petID} [put]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		var in UpdateInput
		if err := httpjson.Decode(r, &in); err != nil {
			httpjson.WriteError(w, err)
			return
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), claims.UserID, in)
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Description Solo el dueño. Se rechaza con 409 mientras la mascota tenga una adopción activa.
// @Tags pets
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Success 204
// @Failure 401 {object} httpjson.ErrorBody
// @Failure 403 {object} httpjson.ErrorBody
// @Failure 404 {object} httpjson.ErrorBody
// @Failure 409 {object} httpjson.ErrorBody "pet has an active adoption request"
// @Router /api/pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), claims.UserID); err != nil {
			httpjson.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// listMyPetsHandler godoc
// @Summary Mis publicaciones
// @Description Publicaciones del usuario autenticado en cualquier status.
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} petListResponse
// @Failure 401 {object} httpjson.ErrorBody
// @Router /api/me/pets [get]
func listMyPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toListResponse(items))
	}
}

func toListResponse(items []Pet) petListResponse {
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	return petListResponse{Count: len(out), Pets: out}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Category:    p.Category,
		Breed:       p.Breed,
		Age:         p.Age,
		Weight:      p.Weight,
		Gender:      p.Gender,
		Description: p.Description,
		Location:    p.Location,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
