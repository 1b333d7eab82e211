package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUnauthorized = errors.New("no autorizado")

	// Rechazos del motor de stock: siempre recuperables, no mutan nada.
	ErrNegativeResult    = errors.New("el stock resultante sería negativo")
	ErrNonPositiveDelta  = errors.New("la cantidad de un movimiento debe ser mayor a cero")
	ErrNegativeSetValue  = errors.New("el stock absoluto no puede ser negativo")
	ErrInvalidOperation  = errors.New("operación de stock desconocida")
	ErrInvalidReason     = errors.New("motivo de ajuste inválido")
	ErrBrokenLedgerChain = errors.New("cadena de movimientos inconsistente")
)
