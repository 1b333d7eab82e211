package inventory

import (
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// VerifyChain recorre los movimientos de un SKU en orden de aceptación partiendo de initial
// y devuelve el stock final. Falla con ErrBrokenLedgerChain si algún movimiento no cuadra
// (after - before != quantity, after < 0) o si su before no es el after del anterior.
func VerifyChain(initial int, movements []entity.StockMovement) (int, error) {
	current := initial
	for i, m := range movements {
		if m.QuantityBefore != current {
			return current, fmt.Errorf("%w: movimiento %d (%s) parte de %d, se esperaba %d",
				domain.ErrBrokenLedgerChain, i, m.ID, m.QuantityBefore, current)
		}
		if m.QuantityAfter-m.QuantityBefore != m.Quantity {
			return current, fmt.Errorf("%w: movimiento %d (%s) con delta %d no cuadra %d -> %d",
				domain.ErrBrokenLedgerChain, i, m.ID, m.Quantity, m.QuantityBefore, m.QuantityAfter)
		}
		if m.QuantityAfter < 0 {
			return current, fmt.Errorf("%w: movimiento %d (%s) deja stock negativo",
				domain.ErrBrokenLedgerChain, i, m.ID)
		}
		current = m.QuantityAfter
	}
	return current, nil
}
