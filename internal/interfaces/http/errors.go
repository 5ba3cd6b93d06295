package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
// Validación, duplicados, stock insuficiente, campo inmutable y dependientes van como 422
// con el mapa de errores por campo.
func writeError(c *fiber.Ctx, err error) error {
	var (
		verr  *domain.ValidationError
		dup   *domain.DuplicateError
		stock *domain.InsufficientStockError
		imm   *domain.ImmutableFieldError
		dep   *domain.HasDependentsError
	)
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Errors: verr.Fields})
	case errors.As(err, &dup):
		return unprocessable(c, "DUPLICATE", dup.Field, "ya existe un registro con este valor")
	case errors.As(err, &stock):
		return unprocessable(c, "INSUFFICIENT_STOCK", "items", stock.Error())
	case errors.As(err, &imm):
		return unprocessable(c, "IMMUTABLE_FIELD", imm.Field, imm.Error())
	case errors.As(err, &dep):
		return unprocessable(c, "HAS_DEPENDENTS", "id", dep.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func unprocessable(c *fiber.Ctx, code, field, msg string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
		Code:    code,
		Message: msg,
		Errors:  map[string][]string{field: {msg}},
	})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// page lee limit/offset de la query con los límites de siempre (20 por defecto, máx. 100).
func page(c *fiber.Ctx) (limit, offset int) {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p.Limit, p.Offset
}
