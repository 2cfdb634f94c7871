// Package httpjson reúne los helpers JSON que antes vivían duplicados en cada handler.
package httpjson

import (
	"encoding/json"
	"net/http"

	"pet-adoption/internal/platform/apperr"
)

type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind    apperr.Kind         `json:"kind"`
	Message string              `json:"message"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

var errInvalidJSON = apperr.New(apperr.KindInvalidInput, "invalid json")

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError traduce el Kind del error a status HTTP.
// Los errores sin Kind se responden como internal sin filtrar el detalle.
func WriteError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	if kind == "" {
		kind = apperr.KindInternal
	}
	WriteJSON(w, StatusFor(kind), ErrorBody{Error: ErrorDetail{
		Kind:    kind,
		Message: apperr.MessageOf(err),
		Fields:  apperr.FieldsOf(err),
	}})
}

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict, apperr.KindInvalidState:
		return http.StatusConflict
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Decode lee el body JSON en v. Campos desconocidos se rechazan.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errInvalidJSON
	}
	return nil
}
