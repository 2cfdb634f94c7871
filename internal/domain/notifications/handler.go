package notifications

import (
	"net/http"
	"strings"
	"time"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/httpjson"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/notifications", func(nr chi.Router) {
		nr.Get("/", listHandler(svc))
		nr.Put("/read-all", markAllReadHandler(svc))
		nr.Put("/{notificationID}/read", markReadHandler(svc))
		nr.Delete("/{notificationID}", deleteHandler(svc))
	})
}

type petSummaryResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type notificationResponse struct {
	ID             string              `json:"id"`
	Type           Type                `json:"type"`
	PetID          string              `json:"pet_id"`
	Pet            *petSummaryResponse `json:"pet"`
	AdoptionID     string              `json:"adoption_id,omitempty"`
	Message        string              `json:"message"`
	Read           bool                `json:"read"`
	ActionRequired bool                `json:"action_required"`
	CreatedAt      time.Time           `json:"created_at"`
}

type inboxResponse struct {
	Notifications []notificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

type markAllReadResponse struct {
	Updated int `json:"updated"`
}

// listHandler godoc
// @Summary Mis notificaciones
// @Description Devuelve las 50 notificaciones más recientes del usuario y el total de no leídas.
// @Tags notifications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} inboxResponse
// @Failure 401 {object} httpjson.ErrorBody
// @Router /api/notifications [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		inbox, err := svc.List(r.Context(), claims.UserID)
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}

		out := make([]notificationResponse, 0, len(inbox.Items))
		for _, it := range inbox.Items {
			out = append(out, toResponse(it))
		}
		httpjson.WriteJSON(w, http.StatusOK, inboxResponse{Notifications: out, UnreadCount: inbox.UnreadCount})
	}
}

// markReadHandler godoc
// @Summary Marcar como leída
// @Tags notifications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param notificationID path string true "ID de la notificación"
// @Success 200 {object} notificationResponse
// @Failure 401 {object} httpjson.ErrorBody
// @Failure 403 {object} httpjson.ErrorBody
// @Failure 404 {object} httpjson.ErrorBody
// @Router /api/notifications/{notificationID}/read [put]
func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		n, err := svc.MarkRead(r.Context(), chi.URLParam(r, "notificationID"), claims.UserID)
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(Item{Notification: n}))
	}
}

// markAllReadHandler godoc
// @Summary Marcar todas como leídas
// @Tags notifications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} markAllReadResponse
// @Failure 401 {object} httpjson.ErrorBody
// @Router /api/notifications/read-all [put]
func markAllReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		n, err := svc.MarkAllRead(r.Context(), claims.UserID)
		if err != nil {
			httpjson.WriteError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, markAllReadResponse{Updated: n})
	}
}

// deleteHandler godoc
// @Summary Borrar notificación
// @Tags notifications
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param notificationID path string true "ID de la notificación"
// @Success 204
// @Failure 401 {object} httpjson.ErrorBody
// @Failure 403 {object} httpjson.ErrorBody
// @Failure 404 {object} httpjson.ErrorBody
// @Router /api/notifications/{notificationID} [delete]
func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteError(w, ErrUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "notificationID"), claims.UserID); err != nil {
			httpjson.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toResponse(it Item) notificationResponse {
	out := notificationResponse{
		ID:             it.ID,
		Type:           it.Type,
		PetID:          it.PetID,
		AdoptionID:     it.AdoptionID,
		Message:        it.Message,
		Read:           it.Read,
		ActionRequired: it.ActionRequired,
		CreatedAt:      it.CreatedAt,
	}
	if it.Pet != nil {
		out.Pet = &petSummaryResponse{ID: it.Pet.ID, Name: it.Pet.Name, ImageURL: it.Pet.ImageURL}
	}
	return out
}
