package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `
	id::text, product_id::text, COALESCE(variation_id::text, ''), type, reason, quantity,
	quantity_before, quantity_after, COALESCE(reference_type, ''), COALESCE(reference_id, ''),
	COALESCE(notes, ''), COALESCE(created_by, ''), created_at`

// StockMovementRepo ledger append-only sobre PostgreSQL (usable con pool o tx).
// La tabla rechaza UPDATE/DELETE por trigger.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento; la base asigna id y created_at.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	for _, n := range []int{m.Quantity, m.QuantityBefore, m.QuantityAfter} {
		if n > inventory.MaxStockQuantity || n < -inventory.MaxStockQuantity {
			return fmt.Errorf("%w: cantidad %d fuera de rango", domain.ErrInvalidInput, n)
		}
	}
	query := `
		INSERT INTO stock_movements (product_id, variation_id, type, reason, quantity, quantity_before, quantity_after,
		                             reference_type, reference_id, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text, created_at`
	err := r.q.QueryRow(ctx, query,
		m.ProductID, nullIfEmpty(m.VariationID), string(m.Type), string(m.Reason), m.Quantity,
		m.QuantityBefore, m.QuantityAfter, nullIfEmpty(m.ReferenceType), nullIfEmpty(m.ReferenceID),
		nullIfEmpty(m.Notes), nullIfEmpty(m.CreatedBy),
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrNegativeResult
		}
		if isOutOfRange(err) {
			return fmt.Errorf("%w: cantidad fuera de rango", domain.ErrInvalidInput)
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil si no existe o el ID no es un UUID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// List lista movimientos del SKU con rango de fechas y paginación.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	where, args := movementWhere(f)
	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}
	pos := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM stock_movements %s ORDER BY created_at %s, seq %s LIMIT $%d OFFSET $%d`,
		movementColumns, where, order, order, pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return collectMovements(rows)
}

// Count total de movimientos que cumplen el filtro (sin paginación).
func (r *StockMovementRepo) Count(ctx context.Context, f repository.MovementFilter) (int, error) {
	where, args := movementWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock movements: %w", err)
	}
	return n, nil
}

// ListChain devuelve la cadena completa del SKU en orden de inserción.
func (r *StockMovementRepo) ListChain(ctx context.Context, productID, variationID string) ([]*entity.StockMovement, error) {
	where, args := movementWhere(repository.MovementFilter{ProductID: productID, VariationID: variationID})
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM stock_movements `+where+` ORDER BY seq ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list movement chain: %w", err)
	}
	return collectMovements(rows)
}

func movementWhere(f repository.MovementFilter) (string, []any) {
	where := `WHERE product_id = $1`
	args := []any{f.ProductID}
	pos := 2
	switch {
	case f.VariationID != "":
		where += fmt.Sprintf(" AND variation_id = $%d", pos)
		args = append(args, f.VariationID)
		pos++
	case !f.AllVariations:
		where += " AND variation_id IS NULL"
	}
	if f.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.To)
	}
	return where, args
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m           entity.StockMovement
		typ, reason string
	)
	err := row.Scan(
		&m.ID, &m.ProductID, &m.VariationID, &typ, &reason, &m.Quantity,
		&m.QuantityBefore, &m.QuantityAfter, &m.ReferenceType, &m.ReferenceID,
		&m.Notes, &m.CreatedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	m.Reason = entity.Reason(reason)
	return &m, nil
}
