package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrImmutableField    = errors.New("campo inmutable")
	ErrHasDependents     = errors.New("el recurso tiene registros dependientes")
)

// ValidationError agrupa errores por campo (se expone como 422 con mapa de errores).
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError crea un ValidationError con un único mensaje para field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Add agrega un mensaje al campo.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty indica si no hay errores registrados.
func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validación: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// InsufficientStockError identifica el ítem que no alcanza para una salida.
type InsufficientStockError struct {
	ItemID    string
	ItemName  string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el ítem: %s (disponible %d, solicitado %d)", e.ItemName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ImmutableFieldError se devuelve al intentar cambiar un campo fijo tras la creación.
type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("el campo %s no puede modificarse", e.Field)
}

func (e *ImmutableFieldError) Unwrap() error { return ErrImmutableField }

// HasDependentsError bloquea el borrado de un recurso referenciado.
type HasDependentsError struct {
	Resource  string
	Dependent string
	Count     int
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("no se puede eliminar %s: tiene %d %s asociados", e.Resource, e.Count, e.Dependent)
}

func (e *HasDependentsError) Unwrap() error { return ErrHasDependents }

// DuplicateError violación de unicidad sobre un campo concreto.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("el valor de %s ya existe", e.Field)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }
