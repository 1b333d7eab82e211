package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ToMovementResponse convierte un movimiento del ledger a su DTO.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		VariationID:    m.VariationID,
		Type:           string(m.Type),
		Reason:         string(m.Reason),
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		Notes:          m.Notes,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

// FromAdjustRequest convierte el body HTTP al request de dominio.
func FromAdjustRequest(userID string, in dto.AdjustStockRequest) entity.StockAdjustmentRequest {
	return entity.StockAdjustmentRequest{
		ProductID:     in.ProductID,
		VariationID:   in.VariationID,
		Operation:     entity.Operation(in.Operation),
		Quantity:      in.Quantity,
		Reason:        entity.Reason(in.Reason),
		Notes:         in.Notes,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		UnitCost:      in.UnitCost,
		RequestedBy:   userID,
	}
}

func toDayGroupDTO(g inventory.DayGroup) dto.MovementDayGroupDTO {
	out := dto.MovementDayGroupDTO{
		Date:      g.Date,
		Count:     len(g.Movements),
		Movements: make([]dto.MovementResponse, 0, len(g.Movements)),
	}
	for i := range g.Movements {
		out.NetChange += g.Movements[i].Quantity
		out.Movements = append(out.Movements, ToMovementResponse(&g.Movements[i]))
	}
	return out
}
