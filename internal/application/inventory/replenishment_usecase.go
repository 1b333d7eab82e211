package inventory

import (
	"context"
	"math"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// idealStockFactor stock ideal = umbral de stock bajo × 1.5.
const idealStockFactor = 1.5

// ReplenishmentUseCase genera la lista de reposición a partir de los SKUs en stock bajo o agotados.
type ReplenishmentUseCase struct {
	itemRepo          repository.StockableItemRepository
	lowStockThreshold int
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(itemRepo repository.StockableItemRepository, lowStockThreshold int) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{itemRepo: itemRepo, lowStockThreshold: lowStockThreshold}
}

// GenerateReplenishmentList devuelve los SKUs activos en low_stock u out_of_stock con la cantidad
// sugerida de pedido, priorizando agotados y luego mayor déficit.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.itemRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, it := range items {
		status := inventory.DeriveStockStatusWithFallback(it.StockQuantity, it.LowStockThreshold, uc.lowStockThreshold)
		if status == entity.StockStatusInStock {
			continue
		}
		threshold := uc.lowStockThreshold
		if it.LowStockThreshold != nil {
			threshold = *it.LowStockThreshold
		}
		ideal := int(math.Ceil(float64(threshold) * idealStockFactor))
		if ideal < 1 {
			ideal = 1
		}
		suggested := ideal - it.StockQuantity
		if suggested < 0 {
			suggested = 0
		}
		unit := inventory.UnitValue(*it)
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          it.ProductID,
			VariationID:        it.VariationID,
			SKU:                it.SKU,
			Name:               it.Name,
			CurrentStock:       it.StockQuantity,
			LowStockThreshold:  threshold,
			StockStatus:        string(status),
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           unit,
			EstimatedOrderCost: unit.Mul(decimal.NewFromInt(int64(suggested))),
		})
	}

	// Agotados primero, luego mayor déficit frente al stock ideal
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		aOut := a.StockStatus == string(entity.StockStatusOutOfStock)
		bOut := b.StockStatus == string(entity.StockStatusOutOfStock)
		if aOut != bOut {
			return aOut
		}
		return a.SuggestedOrderQty > b.SuggestedOrderQty
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
