package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// errorStatus traduce errores de dominio a status HTTP y código estable.
// Los mensajes de rechazo del motor se devuelven tal cual: son aptos para el usuario final.
func errorStatus(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrNegativeResult):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "NEGATIVE_STOCK", Message: err.Error()}
	case errors.Is(err, domain.ErrNonPositiveDelta):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "NON_POSITIVE_DELTA", Message: err.Error()}
	case errors.Is(err, domain.ErrNegativeSetValue):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "NEGATIVE_SET_VALUE", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidOperation):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_OPERATION", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidReason):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_REASON", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto o variación no encontrado"}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}
