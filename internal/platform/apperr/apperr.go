// Package apperr define la taxonomía de errores compartida por los módulos de dominio.
// Cada error de negocio lleva un Kind estable que el transporte HTTP traduce a status.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindInvalidInput Kind = "invalid_input"
	KindUnauthorized Kind = "unauthorized"
	KindRateLimited  Kind = "rate_limited"
	KindInternal     Kind = "internal"
)

// FieldError describe un campo inválido de un input tipado.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError

	cause error
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap conserva la causa para errors.Is/As sin exponerla en Message.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// Invalid arma un error invalid_input con todos los campos que fallaron.
func Invalid(fields ...FieldError) *Error {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	msg := "invalid input"
	if len(names) > 0 {
		msg = "invalid input: " + strings.Join(names, ", ")
	}
	return &Error{Kind: KindInvalidInput, Message: msg, Fields: fields}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is compara por identidad; dos sentinels con el mismo Kind siguen siendo distintos.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t
}

// KindOf devuelve el Kind del primer *Error en la cadena.
// nil => "", cualquier otro error => KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// MessageOf devuelve un mensaje seguro para exponer al cliente.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
