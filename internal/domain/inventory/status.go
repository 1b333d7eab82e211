package inventory

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// DefaultLowStockThreshold umbral de stock bajo cuando el ítem no define uno.
const DefaultLowStockThreshold = 10

// DeriveStockStatus clasifica el nivel de stock con el umbral por defecto.
func DeriveStockStatus(quantity int, threshold *int) entity.StockStatus {
	return DeriveStockStatusWithFallback(quantity, threshold, DefaultLowStockThreshold)
}

// DeriveStockStatusWithFallback igual que DeriveStockStatus pero con el umbral de respaldo
// configurable (INVENTORY_LOW_STOCK_THRESHOLD).
func DeriveStockStatusWithFallback(quantity int, threshold *int, fallback int) entity.StockStatus {
	limit := fallback
	if threshold != nil {
		limit = *threshold
	}
	switch {
	case quantity <= 0:
		return entity.StockStatusOutOfStock
	case quantity <= limit:
		return entity.StockStatusLowStock
	default:
		return entity.StockStatusInStock
	}
}
