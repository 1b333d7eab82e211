package inventory

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// MaxBulkSize máximo de ajustes aceptados en un lote.
const MaxBulkSize = 500

// AdjustConfig parámetros del caso de uso de ajustes.
type AdjustConfig struct {
	LowStockThreshold int // umbral por defecto para el estado derivado
	BulkConcurrency   int // SKUs procesados en paralelo dentro de un lote
}

// AdjustStockUseCase aplica ajustes de stock (set/add/sub) de forma transaccional:
// bloquea la fila del SKU, valida con el motor de stock, guarda el movimiento y el nuevo stock
// en la misma transacción, y publica el movimiento tras el Commit.
type AdjustStockUseCase struct {
	txRunner  TxRunner
	publisher MovementPublisher
	observer  AdjustmentObserver
	log       *logger.Logger
	cfg       AdjustConfig
}

// NewAdjustStockUseCase construye el caso de uso. publisher y observer pueden ser nil.
func NewAdjustStockUseCase(
	txRunner TxRunner,
	publisher MovementPublisher,
	observer AdjustmentObserver,
	log *logger.Logger,
	cfg AdjustConfig,
) *AdjustStockUseCase {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if observer == nil {
		observer = noopObserver{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.LowStockThreshold < 0 {
		cfg.LowStockThreshold = inventory.DefaultLowStockThreshold
	}
	if cfg.BulkConcurrency <= 0 {
		cfg.BulkConcurrency = 1
	}
	return &AdjustStockUseCase{
		txRunner:  txRunner,
		publisher: publisher,
		observer:  observer,
		log:       log,
		cfg:       cfg,
	}
}

// AdjustmentOutcome resultado de un ajuste aceptado.
type AdjustmentOutcome struct {
	Movement *entity.StockMovement
	Item     entity.StockableItem // estado después del ajuste
	Status   entity.StockStatus
}

// Adjust aplica un ajuste. Un rechazo del motor devuelve *inventory.AdjustmentError
// (errors.Is con domain.ErrNegativeResult, ErrNonPositiveDelta, ...) y no escribe nada.
func (uc *AdjustStockUseCase) Adjust(ctx context.Context, req entity.StockAdjustmentRequest) (*AdjustmentOutcome, error) {
	if err := checkRequest(req); err != nil {
		uc.observer.ObserveAdjustment(req.Operation, OutcomeRejected)
		uc.log.Info().Err(err).Str("sku", req.Key()).Msg("ajuste rechazado")
		return nil, err
	}

	var out AdjustmentOutcome
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.StockableItemRepository,
		movRepo repository.StockMovementRepository,
	) error {
		// Bloquea la fila del SKU (SELECT FOR UPDATE): leer-validar-escribir es sección crítica
		item, err := itemRepo.GetForUpdate(ctx, req.ProductID, req.VariationID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		v := inventory.ValidateAdjustment(item.StockQuantity, req.Quantity, req.Operation)
		if !v.Valid {
			return v.Err
		}
		mov, err := inventory.BuildMovementRecord(*item, req, v)
		if err != nil {
			return err
		}
		if err := movRepo.Create(ctx, &mov); err != nil {
			return err
		}
		if err := itemRepo.UpdateStock(ctx, req.ProductID, req.VariationID, v.NewStock); err != nil {
			return err
		}
		if req.UnitCost != nil {
			newCost := *req.UnitCost
			if item.CostPrice != nil {
				newCost = inventory.CostCalculator(item.StockQuantity, *item.CostPrice, req.Quantity, *req.UnitCost)
			}
			if err := itemRepo.UpdateCostPrice(ctx, req.ProductID, req.VariationID, newCost); err != nil {
				return err
			}
			item.CostPrice = &newCost
		}

		item.StockQuantity = v.NewStock
		out = AdjustmentOutcome{
			Movement: &mov,
			Item:     *item,
			Status:   inventory.DeriveStockStatusWithFallback(item.StockQuantity, item.LowStockThreshold, uc.cfg.LowStockThreshold),
		}
		return nil
	})
	if err != nil {
		if isRejection(err) {
			uc.observer.ObserveAdjustment(req.Operation, OutcomeRejected)
			uc.log.Info().Err(err).Str("sku", req.Key()).Str("operation", string(req.Operation)).
				Int("quantity", req.Quantity).Msg("ajuste rechazado")
		} else {
			uc.observer.ObserveAdjustment(req.Operation, OutcomeFailed)
			uc.log.Error().Err(err).Str("sku", req.Key()).Msg("ajuste de stock")
		}
		return nil, err
	}

	uc.observer.ObserveAdjustment(req.Operation, OutcomeAccepted)
	uc.log.Debug().
		Str("movement_id", out.Movement.ID).
		Str("sku", req.Key()).
		Str("type", string(out.Movement.Type)).
		Int("before", out.Movement.QuantityBefore).
		Int("after", out.Movement.QuantityAfter).
		Msg("movimiento registrado")

	// El movimiento ya está confirmado: un fallo al publicar no revierte el ajuste.
	if err := uc.publisher.PublishMovement(ctx, out.Movement); err != nil {
		uc.log.Warn().Err(err).Str("movement_id", out.Movement.ID).Msg("publicar movimiento")
	}
	return &out, nil
}

// BulkItemOutcome resultado de un ajuste del lote. Err nil indica éxito.
type BulkItemOutcome struct {
	Index   int
	Request entity.StockAdjustmentRequest
	Outcome *AdjustmentOutcome
	Err     error
}

// BulkResult resultado de un lote; Items conserva el orden del request.
type BulkResult struct {
	SuccessCount int
	ErrorCount   int
	Items        []BulkItemOutcome
}

// BulkAdjust aplica ajustes independientes con éxito parcial: el fallo de uno no bloquea a los demás.
// Cada ajuste usa su propia transacción. Los que apuntan al mismo SKU se aplican en el orden
// recibido; SKUs distintos se procesan en paralelo hasta BulkConcurrency.
func (uc *AdjustStockUseCase) BulkAdjust(ctx context.Context, reqs []entity.StockAdjustmentRequest) (*BulkResult, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: el lote está vacío", domain.ErrInvalidInput)
	}
	if len(reqs) > MaxBulkSize {
		return nil, fmt.Errorf("%w: el lote supera %d ajustes", domain.ErrInvalidInput, MaxBulkSize)
	}

	uc.observer.ObserveBulk(len(reqs))

	// Agrupar índices por SKU respetando el orden de llegada
	var keys []string
	byKey := make(map[string][]int)
	for i, r := range reqs {
		k := r.Key()
		if _, ok := byKey[k]; !ok {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], i)
	}

	items := make([]BulkItemOutcome, len(reqs))
	var g errgroup.Group
	g.SetLimit(uc.cfg.BulkConcurrency)
	for _, k := range keys {
		idxs := byKey[k]
		g.Go(func() error {
			for _, i := range idxs {
				items[i] = BulkItemOutcome{Index: i, Request: reqs[i]}
				if err := ctx.Err(); err != nil {
					items[i].Err = err
					continue
				}
				items[i].Outcome, items[i].Err = uc.Adjust(ctx, reqs[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	res := &BulkResult{Items: items}
	for _, it := range items {
		if it.Err == nil {
			res.SuccessCount++
		} else {
			res.ErrorCount++
		}
	}
	uc.log.Info().Int("total", len(reqs)).Int("ok", res.SuccessCount).Int("errors", res.ErrorCount).Msg("ajuste masivo")
	return res, nil
}

// checkRequest validaciones de forma que no requieren leer el stock.
func checkRequest(req entity.StockAdjustmentRequest) error {
	if req.ProductID == "" {
		return fmt.Errorf("%w: product_id es requerido", domain.ErrInvalidInput)
	}
	if !req.Operation.IsValid() {
		return inventory.ValidateAdjustment(0, req.Quantity, req.Operation).Err
	}
	if req.Quantity > inventory.MaxStockQuantity || req.Quantity < -inventory.MaxStockQuantity {
		return fmt.Errorf("%w: quantity fuera de rango (máximo %d)", domain.ErrInvalidInput, inventory.MaxStockQuantity)
	}
	if !req.Reason.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidReason, req.Reason)
	}
	if req.UnitCost != nil {
		if req.Operation != entity.OperationAdd {
			return fmt.Errorf("%w: unit_cost solo aplica a entradas (add)", domain.ErrInvalidInput)
		}
		if req.UnitCost.IsNegative() {
			return fmt.Errorf("%w: unit_cost no puede ser negativo", domain.ErrInvalidInput)
		}
	}
	return nil
}

// isRejection distingue rechazos de negocio de fallos de infraestructura.
func isRejection(err error) bool {
	var adjErr *inventory.AdjustmentError
	if errors.As(err, &adjErr) {
		return true
	}
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrInvalidReason) ||
		errors.Is(err, domain.ErrNegativeResult)
}
