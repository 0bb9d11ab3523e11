package animals

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrParentageConflict = errors.New("parentage conflict")
	ErrDuplicate         = errors.New("already exists")
	ErrHasDependents     = errors.New("has dependents")

	// ErrTxConflict lo devuelven los stores cuando la transacción no pudo serializarse.
	// El Service reintenta; nunca debería llegar al handler salvo agotados los intentos.
	ErrTxConflict = errors.New("transaction conflict")
)

// NotFoundError indica qué entidad faltó.
// Reference=true cuando el id venía en el body (type_id, mother_id, father_id)
// y no en la ruta: el handler lo responde como 400, no 404.
type NotFoundError struct {
	Entity    string
	ID        string
	Reference bool
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func referenceNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id, Reference: true}
}

// ValidationError describe un campo inválido o faltante.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// MissingReference lo usan los stores cuando una FK del body apunta a nada
// (type_id, mother_id, father_id).
func MissingReference(entity, id string) error {
	return referenceNotFound(entity, id)
}
