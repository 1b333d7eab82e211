package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter criterios de búsqueda del ledger de un SKU.
// VariationID vacío con AllVariations=false limita al producto simple.
type MovementFilter struct {
	ProductID     string
	VariationID   string
	AllVariations bool
	From, To      *time.Time
	Limit, Offset int
	Ascending     bool
}

// StockMovementRepository puerto de persistencia del ledger (solo inserción y lectura).
type StockMovementRepository interface {
	// Create inserta el movimiento y completa ID y CreatedAt asignados por la base.
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	Count(ctx context.Context, filter MovementFilter) (int, error)
	// ListChain devuelve todos los movimientos de un SKU en orden de aceptación.
	ListChain(ctx context.Context, productID, variationID string) ([]*entity.StockMovement, error)
}
