package adoptions

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/httpjson"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /adoptions. requestMW se aplica solo a la creación (p.ej. rate limit).
func RegisterRoutes(r chi.Router, svc *Service, requestMW ...func(http.Handler) http.Handler) {
	r.Route("/adoptions", func(ar chi.Router) {
		ar.With(requestMW...).Post("/", requestHandler(svc))
		ar.Get("/my-requests", listMineHandler(svc))
		ar.Get("/received", listReceivedHandler(svc))
		ar.Get("/{requestID}", getHandler(svc))
		ar.Put("/{requestID}", decideHandler(svc))
		ar.Post("/{requestID}/complete", completeHandler(svc))
	})
}

type petSummaryResponse struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
	ImageURL string      `json:"image_url"`
	Status   pets.Status `json:"status"`
}

type requestResponse struct {
	ID            string `json:"id"`
	PetID         string `json:"pet_id"`
	AdopterUserID string `json:"adopter_user_id"`
	OwnerUserID   string `json:"owner_user_id"`

	Reason       string `json:"reason"`
	Experience   string `json:"experience"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Message      string `json:"message"`

	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type viewResponse struct {
	requestResponse
	Pet                *petSummaryResponse `json:"pet"`
	CounterpartyUserID string              `json:"counterparty_user_id"`
}

type listResponse struct {
	Count    int            `json:"count"`
	Requests []viewResponse `json:"requests"`
}

// requestHandler godoc
// @Summary Solicitar adopción
// @Description Crea una solicitud pendiente. La mascota pasa a `pending` y el dueño recibe una notificación `adoption_request`. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags adoptions
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body RequestInput true "Formulario de adopción"
// @Success 201 {object} requestResponse
// @Failure 400 {object} httpjson.ErrorBody "campos inválidos"
// @Failure 401 {object} httpjson.ErrorBody
// @Failure 403 {object} httpjson.ErrorBody "mascota propia"
// @Failure 404 {object} httpjson.ErrorBody "pet not found"
// @Failure 409 {object} httpjson.ErrorBody "no disponible / solicitud duplicada"
// @Failure 429 {object} httpjson.ErrorBody "rate limit"
// @Router /api/adoptions [post]
func requestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		var in RequestInput
		if err := httpjson.Decode(r, &in); err != nil {
			httpjson.WriteError(w, err)
			return
		}

		req, err := svc.Request(r.Context(), claims.UserID, in)
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toRequestResponse(req))
	}
}

// listMineHandler godoc
// @Summary Mis solicitudes (adoptante)
// @Tags adoptions
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} listResponse
// @Failure 401 {object} httpjson.ErrorBody
// @Router /api/adoptions/my-requests [get]
func listMineHandler(svc *Service) http.HandlerFunc {
	return listHandler(svc.ListForAdopter)
}

// listReceivedHandler godoc
// @Summary Solicitudes recibidas (dueño)
// @Tags adoptions
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} listResponse
// @Failure 401 {object} httpjson.ErrorBody
// @Router /api/adoptions/received [get]
func listReceivedHandler(svc *Service) http.HandlerFunc {
	return listHandler(svc.ListForOwner)
}

// getHandler godoc
// @Summary Ver solicitud
// @Description Solo el adoptante o el dueño.
// @Tags adoptions
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param requestID path string true "ID de la solicitud"
// @Success 200 {object} viewResponse
// @Failure 401 {object} httpjson.ErrorBody
// @Failure 403 {object} httpjson.ErrorBody
// @Failure 404 {object} httpjson.ErrorBody
// @Router /api/adoptions/{requestID} [get]
func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		v, err := svc.Get(r.Context(), chi.URLParam(r, "requestID"), claims.UserID)
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toViewResponse(v))
	}
}

// decideHandler godoc
// @Summary Aprobar o rechazar
// @Description Solo el dueño y solo sobre solicitudes `pending`. Aprobar mantiene la mascota en `pending`; rechazar la libera a `available`. El adoptante recibe la notificación correspondiente.
// @Tags adoptions
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param requestID path string true "ID de la solicitud"
// @Param payload body DecideInput true "approved | rejected"
// @Success 200 {object} requestResponse
// @Failure 400 {object} httpjson.ErrorBody "decisión inválida"
// @Failure 401 {object} httpjson.ErrorBody
// @Failure 403 {object} httpjson.ErrorBody
// @Failure 404 {object} httpjson.ErrorBody
// @Failure 409 {object} httpjson.ErrorBody "la solicitud no está pending"
// @Router /api/adoptions/{requestID} [put]
func decideHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		var in DecideInput
		if err := httpjson.Decode(r, &in); err != nil {
			httpjson.WriteError(w, err)
			return
		}

		req, err := svc.Decide(r.Context(), chi.URLParam(r, "requestID"), claims.UserID, in)
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toRequestResponse(req))
	}
}

// completeHandler godoc
// @Summary Finalizar adopción
// @Description Solo el adoptante y solo sobre solicitudes `approved`. La mascota pasa a `adopted` y el dueño recibe `adoption_completed`.
// @Tags adoptions
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param requestID path string true "ID de la solicitud"
// @Success 200 {object} requestResponse
// @Failure 401 {object} httpjson.ErrorBody
// @Failure 403 {object} httpjson.ErrorBody
// @Failure 404 {object} httpjson.ErrorBody
// @Failure 409 {object} httpjson.ErrorBody "la solicitud no está approved"
// @Router /api/adoptions/{requestID}/complete [post]
func completeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		req, err := svc.Complete(r.Context(), chi.URLParam(r, "requestID"), claims.UserID)
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toRequestResponse(req))
	}
}

func listHandler(list func(ctx context.Context, userID string) ([]View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		items, err := list(r.Context(), claims.UserID)
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}

		out := make([]viewResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toViewResponse(v))
		}
		httpjson.WriteJSON(w, http.StatusOK, listResponse{Count: len(out), Requests: out})
	}
}

func toRequestResponse(r Request) requestResponse {
	return requestResponse{
		ID:            r.ID,
		PetID:         r.PetID,
		AdopterUserID: r.AdopterUserID,
		OwnerUserID:   r.OwnerUserID,
		Reason:        r.Reason,
		Experience:    r.Experience,
		ContactName:   r.ContactName,
		ContactEmail:  r.ContactEmail,
		ContactPhone:  r.ContactPhone,
		Message:       r.Message,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		ApprovedAt:    r.ApprovedAt,
		RejectedAt:    r.RejectedAt,
		CompletedAt:   r.CompletedAt,
	}
}

func toViewResponse(v View) viewResponse {
	out := viewResponse{
		requestResponse:    toRequestResponse(v.Request),
		CounterpartyUserID: v.CounterpartyUserID,
	}
	if v.Pet != nil {
		out.Pet = &petSummaryResponse{
			ID:       v.Pet.ID,
			Name:     v.Pet.Name,
			Category: string(v.Pet.Category),
			ImageURL: v.Pet.ImageURL,
			Status:   v.Pet.Status,
		}
	}
	return out
}
