package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// maxDayGroupMovements tope de movimientos leídos para la vista agrupada por día.
const maxDayGroupMovements = 500

// StockQueryUseCase consultas de solo lectura sobre stock y ledger.
type StockQueryUseCase struct {
	itemRepo          repository.StockableItemRepository
	movRepo           repository.StockMovementRepository
	loc               *time.Location
	lowStockThreshold int
}

// NewStockQueryUseCase construye el caso de uso. loc es la zona horaria de visualización.
func NewStockQueryUseCase(
	itemRepo repository.StockableItemRepository,
	movRepo repository.StockMovementRepository,
	loc *time.Location,
	lowStockThreshold int,
) *StockQueryUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &StockQueryUseCase{
		itemRepo:          itemRepo,
		movRepo:           movRepo,
		loc:               loc,
		lowStockThreshold: lowStockThreshold,
	}
}

// Location zona horaria con la que se interpretan fechas y se agrupan días.
func (uc *StockQueryUseCase) Location() *time.Location { return uc.loc }

// ListMovements devuelve una página del ledger de un SKU (más recientes primero).
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id es requerido", domain.ErrInvalidInput)
	}
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	list, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.movRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// GetMovement devuelve un movimiento del ledger por ID.
func (uc *StockQueryUseCase) GetMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id es requerido", domain.ErrInvalidInput)
	}
	m, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	out := ToMovementResponse(m)
	return &out, nil
}

// MovementsByDay agrupa el historial por día calendario en la zona configurada.
func (uc *StockQueryUseCase) MovementsByDay(ctx context.Context, filter repository.MovementFilter, order inventory.SortOrder) ([]dto.MovementDayGroupDTO, error) {
	if filter.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id es requerido", domain.ErrInvalidInput)
	}
	if filter.Limit <= 0 || filter.Limit > maxDayGroupMovements {
		filter.Limit = maxDayGroupMovements
	}
	// Siempre los más recientes; el orden pedido se aplica al agrupar.
	filter.Ascending = false

	list, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	movs := make([]entity.StockMovement, len(list))
	for i, m := range list {
		if order == inventory.SortAsc {
			movs[len(list)-1-i] = *m
		} else {
			movs[i] = *m
		}
	}
	groups := inventory.GroupMovementsByDay(movs, uc.loc, order)
	out := make([]dto.MovementDayGroupDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, toDayGroupDTO(g))
	}
	return out, nil
}

// ItemStatus devuelve el stock, el estado derivado y la valorización de un SKU.
func (uc *StockQueryUseCase) ItemStatus(ctx context.Context, productID, variationID string) (*dto.ItemStatusResponse, error) {
	item, err := uc.itemRepo.Get(ctx, productID, variationID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	threshold := uc.lowStockThreshold
	if item.LowStockThreshold != nil {
		threshold = *item.LowStockThreshold
	}
	unit := inventory.UnitValue(*item)
	return &dto.ItemStatusResponse{
		ProductID:         item.ProductID,
		VariationID:       item.VariationID,
		SKU:               item.SKU,
		Name:              item.Name,
		StockQuantity:     item.StockQuantity,
		LowStockThreshold: threshold,
		StockStatus:       string(inventory.DeriveStockStatusWithFallback(item.StockQuantity, item.LowStockThreshold, uc.lowStockThreshold)),
		UnitValue:         unit,
		StockValue:        inventory.AggregateStockValue([]entity.StockableItem{*item}),
		IsActive:          item.IsActive,
	}, nil
}

// StockSummary totales de SKUs activos: conteos por estado y valor total del inventario.
func (uc *StockQueryUseCase) StockSummary(ctx context.Context) (*dto.StockSummaryDTO, error) {
	list, err := uc.itemRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]entity.StockableItem, 0, len(list))
	for _, it := range list {
		items = append(items, *it)
	}
	s := inventory.SummarizeStock(items, uc.lowStockThreshold)
	return &dto.StockSummaryDTO{
		TotalItems:      s.TotalItems,
		InStockCount:    s.InStock,
		LowStockCount:   s.LowStock,
		OutOfStockCount: s.OutOfStock,
		TotalUnits:      s.TotalUnits,
		TotalValue:      s.TotalValue,
	}, nil
}

// VerifyLedger recorre la cadena completa de movimientos del SKU y la compara con el stock actual.
// Una inconsistencia no es error: se informa en Consistent/Problem.
func (uc *StockQueryUseCase) VerifyLedger(ctx context.Context, productID, variationID string) (*dto.LedgerVerificationDTO, error) {
	item, err := uc.itemRepo.Get(ctx, productID, variationID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	chain, err := uc.movRepo.ListChain(ctx, productID, variationID)
	if err != nil {
		return nil, err
	}

	out := &dto.LedgerVerificationDTO{
		ProductID:     productID,
		VariationID:   variationID,
		Movements:     len(chain),
		InitialStock:  item.StockQuantity,
		LedgerStock:   item.StockQuantity,
		StockQuantity: item.StockQuantity,
		Consistent:    true,
	}
	if len(chain) == 0 {
		return out, nil
	}

	movs := make([]entity.StockMovement, 0, len(chain))
	for _, m := range chain {
		movs = append(movs, *m)
	}
	out.InitialStock = movs[0].QuantityBefore
	final, err := inventory.VerifyChain(out.InitialStock, movs)
	out.LedgerStock = final
	switch {
	case err != nil:
		out.Consistent = false
		out.Problem = err.Error()
	case final != item.StockQuantity:
		out.Consistent = false
		out.Problem = fmt.Sprintf("el stock actual (%d) no coincide con el ledger (%d)", item.StockQuantity, final)
	}
	return out, nil
}
