package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// uniqueFields constraint único -> campo expuesto en el error 422.
var uniqueFields = map[string]string{
	"categories_name_key":             "name",
	"items_sku_key":                   "sku",
	"transactions_transaction_no_key": "transaction_no",
	"users_email_key":                 "email",
}

// validID las columnas id son UUID; un texto malformado no puede existir y no se envía a postgres (22P02).
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation 23503: borrado de una fila referenciada (ON DELETE RESTRICT).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// duplicateError traduce la violación de unicidad al campo afectado.
func duplicateError(err error, fallback string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if f, ok := uniqueFields[pgErr.ConstraintName]; ok {
			return &domain.DuplicateError{Field: f}
		}
	}
	return &domain.DuplicateError{Field: fallback}
}
