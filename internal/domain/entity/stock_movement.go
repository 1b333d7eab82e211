package entity

import "time"

// MovementType clasificación derivada del movimiento (nunca la envía el usuario).
type MovementType string

const (
	MovementTypeIn         MovementType = "in"         // entrada
	MovementTypeOut        MovementType = "out"        // salida
	MovementTypeAdjustment MovementType = "adjustment" // corrección absoluta
)

// StockMovement registro inmutable del ledger. Se crea una sola vez por ajuste aceptado.
// Invariante: QuantityAfter = QuantityBefore + Quantity y QuantityAfter >= 0.
type StockMovement struct {
	ID             string
	ProductID      string
	VariationID    string
	Type           MovementType
	Reason         Reason
	Quantity       int // delta con signo
	QuantityBefore int
	QuantityAfter  int
	ReferenceType  string
	ReferenceID    string
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time // asignado por la persistencia
}

// Key clave de SKU del movimiento.
func (m StockMovement) Key() string {
	return ItemKey(m.ProductID, m.VariationID)
}
