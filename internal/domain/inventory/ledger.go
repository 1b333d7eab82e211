package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AdjustmentError rechazo de un ajuste. Unwrap devuelve el error centinela de domain
// (ErrNegativeResult, ErrNonPositiveDelta, ErrNegativeSetValue, ErrInvalidOperation o
// ErrInvalidInput cuando la cantidad excede el rango almacenable).
type AdjustmentError struct {
	Kind      error
	Attempted int // stock resultante (negativo) o cantidad rechazada
	Message   string
}

func (e *AdjustmentError) Error() string { return e.Message }

func (e *AdjustmentError) Unwrap() error { return e.Kind }

// Validation resultado de ValidateAdjustment. Si Valid es false, NewStock no tiene significado.
type Validation struct {
	Valid    bool
	NewStock int
	Message  string
	Err      error
}

func reject(kind error, attempted int, msg string) Validation {
	return Validation{
		Valid:   false,
		Message: msg,
		Err:     &AdjustmentError{Kind: kind, Attempted: attempted, Message: msg},
	}
}

// MaxStockQuantity mayor cantidad representable en las columnas INTEGER del stock y del ledger.
const MaxStockQuantity = math.MaxInt32

// ValidateAdjustment calcula el stock tentativo y valida el ajuste. Antes de las reglas se
// descartan cantidades fuera de ±MaxStockQuantity y resultados por encima de ese tope
// (ErrInvalidInput). Reglas en orden:
//  1. el stock resultante no puede ser negativo;
//  2. add/sub requieren cantidad > 0;
//  3. set requiere cantidad >= 0.
//
// Es una función pura: mismos argumentos, mismo resultado.
func ValidateAdjustment(currentStock, quantity int, op entity.Operation) Validation {
	if !op.IsValid() {
		return reject(domain.ErrInvalidOperation, quantity, fmt.Sprintf("operación %q no soportada (use set, add o sub)", op))
	}
	if outOfRange(int64(quantity)) {
		return reject(domain.ErrInvalidInput, quantity,
			fmt.Sprintf("cantidad fuera de rango: |%d| supera %d", quantity, MaxStockQuantity))
	}
	if outOfRange(int64(currentStock)) {
		return reject(domain.ErrInvalidInput, currentStock,
			fmt.Sprintf("stock actual fuera de rango: %d", currentStock))
	}

	var wide int64
	switch op {
	case entity.OperationSet:
		wide = int64(quantity)
	case entity.OperationAdd:
		wide = int64(currentStock) + int64(quantity)
	case entity.OperationSub:
		wide = int64(currentStock) - int64(quantity)
	}
	if wide > MaxStockQuantity {
		return reject(domain.ErrInvalidInput, quantity,
			fmt.Sprintf("el stock resultante supera el máximo: %d %s %d daría %d (máximo %d)", currentStock, op, quantity, wide, MaxStockQuantity))
	}
	newStock := int(wide)

	if newStock < 0 {
		return reject(domain.ErrNegativeResult, newStock,
			fmt.Sprintf("el stock no puede quedar negativo: %d %s %d daría %d", currentStock, op, quantity, newStock))
	}
	if op.IsDelta() && quantity <= 0 {
		return reject(domain.ErrNonPositiveDelta, quantity,
			fmt.Sprintf("la cantidad a %s debe ser mayor a cero (recibido %d)", opVerb(op), quantity))
	}
	if op == entity.OperationSet && quantity < 0 {
		return reject(domain.ErrNegativeSetValue, quantity,
			fmt.Sprintf("el stock absoluto no puede ser negativo (recibido %d)", quantity))
	}
	return Validation{Valid: true, NewStock: newStock}
}

func outOfRange(n int64) bool {
	return n > MaxStockQuantity || n < -MaxStockQuantity
}

func opVerb(op entity.Operation) string {
	if op == entity.OperationAdd {
		return "sumar"
	}
	return "restar"
}

// ClassifyMovement deriva el tipo de movimiento. Un set siempre es ajuste aunque el delta
// tenga dirección: representa una corrección, no un evento de entrada o salida.
func ClassifyMovement(op entity.Operation, delta int) entity.MovementType {
	switch op {
	case entity.OperationAdd:
		return entity.MovementTypeIn
	case entity.OperationSub:
		return entity.MovementTypeOut
	default:
		return entity.MovementTypeAdjustment
	}
}

// BuildMovementRecord construye el registro del ledger para un ajuste validado.
// ID y CreatedAt quedan vacíos: los asigna la persistencia al insertar.
func BuildMovementRecord(item entity.StockableItem, req entity.StockAdjustmentRequest, v Validation) (entity.StockMovement, error) {
	if !v.Valid {
		return entity.StockMovement{}, fmt.Errorf("%w: validación rechazada", domain.ErrInvalidInput)
	}
	if item.ProductID != req.ProductID || item.VariationID != req.VariationID {
		return entity.StockMovement{}, fmt.Errorf("%w: el ítem no corresponde al ajuste", domain.ErrInvalidInput)
	}
	if expected := ValidateAdjustment(item.StockQuantity, req.Quantity, req.Operation); !expected.Valid || expected.NewStock != v.NewStock {
		return entity.StockMovement{}, fmt.Errorf("%w: la validación no corresponde al stock actual", domain.ErrInvalidInput)
	}

	before := item.StockQuantity
	after := v.NewStock
	delta := after - before
	return entity.StockMovement{
		ProductID:      req.ProductID,
		VariationID:    req.VariationID,
		Type:           ClassifyMovement(req.Operation, delta),
		Reason:         req.Reason,
		Quantity:       delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		ReferenceType:  req.ReferenceType,
		ReferenceID:    req.ReferenceID,
		Notes:          req.Notes,
		CreatedBy:      req.RequestedBy,
	}, nil
}
