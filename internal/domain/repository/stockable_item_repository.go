package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockableItemRepository define el puerto para leer y actualizar el stock de productos y variaciones.
// Usado dentro de transacciones para garantizar consistencia con el ledger.
type StockableItemRepository interface {
	// Get devuelve el ítem o nil si no existe.
	Get(ctx context.Context, productID, variationID string) (*entity.StockableItem, error)
	// GetForUpdate igual que Get pero bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID, variationID string) (*entity.StockableItem, error)
	UpdateStock(ctx context.Context, productID, variationID string, quantity int) error
	UpdateCostPrice(ctx context.Context, productID, variationID string, cost decimal.Decimal) error
	// ListActive devuelve todos los SKUs activos (productos simples y variaciones).
	ListActive(ctx context.Context) ([]*entity.StockableItem, error)
}
