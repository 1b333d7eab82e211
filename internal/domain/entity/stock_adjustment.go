package entity

import "github.com/shopspring/decimal"

// Operation tipo de ajuste solicitado.
type Operation string

const (
	OperationSet Operation = "set" // nivel absoluto
	OperationAdd Operation = "add" // suma
	OperationSub Operation = "sub" // resta
)

// IsValid indica si la operación pertenece a la enumeración.
func (o Operation) IsValid() bool {
	switch o {
	case OperationSet, OperationAdd, OperationSub:
		return true
	}
	return false
}

// IsDelta indica si Quantity se interpreta como variación (add/sub) y no como nivel absoluto.
func (o Operation) IsDelta() bool {
	return o == OperationAdd || o == OperationSub
}

// Reason motivo de un ajuste. Los valores se conservan tal cual para los reportes.
type Reason string

const (
	ReasonSale       Reason = "sale"
	ReasonReturn     Reason = "return"
	ReasonRestock    Reason = "restock"
	ReasonAdjustment Reason = "adjustment"
	ReasonDamaged    Reason = "damaged"
	ReasonLost       Reason = "lost"
)

// Reasons lista de motivos aceptados, en el orden en que se muestran.
var Reasons = []Reason{ReasonSale, ReasonReturn, ReasonRestock, ReasonAdjustment, ReasonDamaged, ReasonLost}

// IsValid indica si el motivo pertenece a la enumeración.
func (r Reason) IsValid() bool {
	for _, v := range Reasons {
		if r == v {
			return true
		}
	}
	return false
}

// StockAdjustmentRequest mutación de stock propuesta para un SKU.
// Para add/sub Quantity es la variación (> 0); para set es el nuevo nivel (>= 0).
type StockAdjustmentRequest struct {
	ProductID     string
	VariationID   string
	Operation     Operation
	Quantity      int
	Reason        Reason
	Notes         string
	ReferenceType string // ej. "order"
	ReferenceID   string
	UnitCost      *decimal.Decimal // opcional en add: recalcula el costo promedio
	RequestedBy   string           // usuario que origina el ajuste
}

// Key clave de SKU del request.
func (r StockAdjustmentRequest) Key() string {
	return ItemKey(r.ProductID, r.VariationID)
}
