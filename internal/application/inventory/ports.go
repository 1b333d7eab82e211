package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el stock y el movimiento se escriben como una sola unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.StockableItemRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// MovementPublisher difunde los movimientos ya confirmados (ej. Kafka).
type MovementPublisher interface {
	PublishMovement(ctx context.Context, movement *entity.StockMovement) error
}

// AdjustmentObserver recibe el resultado de cada ajuste y el tamaño de cada lote (métricas).
type AdjustmentObserver interface {
	ObserveAdjustment(op entity.Operation, outcome string)
	ObserveBulk(size int)
}

// Resultados reportados al observer.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

type noopPublisher struct{}

func (noopPublisher) PublishMovement(context.Context, *entity.StockMovement) error { return nil }

type noopObserver struct{}

func (noopObserver) ObserveAdjustment(entity.Operation, string) {}
func (noopObserver) ObserveBulk(int) {}
