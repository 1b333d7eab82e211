package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockableItemRepository = (*StockableItemRepo)(nil)

// Productos simples y variaciones comparten forma; variation_id vacío indica producto simple.
const (
	selectProduct = `
		SELECT p.id::text, '' AS variation_id, p.sku, p.name, p.stock_quantity, p.low_stock_threshold,
		       p.cost_price, p.price, p.is_active, p.updated_at
		FROM products p`
	selectVariation = `
		SELECT v.product_id::text, v.id::text, v.sku, COALESCE(NULLIF(v.name, ''), p.name), v.stock_quantity,
		       COALESCE(v.low_stock_threshold, p.low_stock_threshold),
		       v.cost_price, COALESCE(v.price, p.price), p.is_active AND v.is_active, v.updated_at
		FROM product_variations v
		JOIN products p ON p.id = v.product_id`
)

// StockableItemRepo implementación de StockableItemRepository sobre PostgreSQL (usable con pool o tx).
type StockableItemRepo struct {
	q Querier
}

// NewStockableItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockableItemRepository(q Querier) *StockableItemRepo {
	return &StockableItemRepo{q: q}
}

// Get obtiene el producto o la variación; nil si no existe.
func (r *StockableItemRepo) Get(ctx context.Context, productID, variationID string) (*entity.StockableItem, error) {
	return r.get(ctx, productID, variationID, false)
}

// GetForUpdate obtiene el ítem y bloquea su fila (SELECT FOR UPDATE) hasta el fin de la transacción.
func (r *StockableItemRepo) GetForUpdate(ctx context.Context, productID, variationID string) (*entity.StockableItem, error) {
	return r.get(ctx, productID, variationID, true)
}

func (r *StockableItemRepo) get(ctx context.Context, productID, variationID string, lock bool) (*entity.StockableItem, error) {
	var (
		query string
		args  []any
	)
	if variationID == "" {
		query = selectProduct + ` WHERE p.id = $1`
		args = []any{productID}
		if lock {
			query += ` FOR UPDATE`
		}
	} else {
		query = selectVariation + ` WHERE v.product_id = $1 AND v.id = $2`
		args = []any{productID, variationID}
		if lock {
			query += ` FOR UPDATE OF v`
		}
	}

	item, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stockable item: %w", err)
	}
	return item, nil
}

// UpdateStock escribe el nuevo stock. La columna tiene CHECK (stock_quantity >= 0).
func (r *StockableItemRepo) UpdateStock(ctx context.Context, productID, variationID string, quantity int) error {
	if quantity > inventory.MaxStockQuantity {
		return fmt.Errorf("%w: stock %d fuera de rango", domain.ErrInvalidInput, quantity)
	}
	var (
		query string
		args  []any
	)
	if variationID == "" {
		query = `UPDATE products SET stock_quantity = $2, updated_at = now() WHERE id = $1`
		args = []any{productID, quantity}
	} else {
		query = `UPDATE product_variations SET stock_quantity = $3, updated_at = now() WHERE product_id = $1 AND id = $2`
		args = []any{productID, variationID, quantity}
	}
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrNegativeResult
		}
		if isOutOfRange(err) {
			return fmt.Errorf("%w: stock fuera de rango", domain.ErrInvalidInput)
		}
		return fmt.Errorf("update stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCostPrice actualiza el costo de compra (costo promedio tras una entrada con unit_cost).
func (r *StockableItemRepo) UpdateCostPrice(ctx context.Context, productID, variationID string, cost decimal.Decimal) error {
	var err error
	if variationID == "" {
		_, err = r.q.Exec(ctx, `UPDATE products SET cost_price = $2, updated_at = now() WHERE id = $1`, productID, cost)
	} else {
		_, err = r.q.Exec(ctx,
			`UPDATE product_variations SET cost_price = $3, updated_at = now() WHERE product_id = $1 AND id = $2`,
			productID, variationID, cost)
	}
	if err != nil {
		return fmt.Errorf("update cost price: %w", err)
	}
	return nil
}

// ListActive lista productos simples activos y variaciones activas de productos activos.
func (r *StockableItemRepo) ListActive(ctx context.Context) ([]*entity.StockableItem, error) {
	query := selectProduct + `
		WHERE p.is_active
		  AND NOT EXISTS (SELECT 1 FROM product_variations x WHERE x.product_id = p.id)
		UNION ALL` + selectVariation + `
		WHERE p.is_active AND v.is_active
		ORDER BY 3`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active items: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockableItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stockable item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func scanItem(row pgx.Row) (*entity.StockableItem, error) {
	var it entity.StockableItem
	err := row.Scan(
		&it.ProductID, &it.VariationID, &it.SKU, &it.Name, &it.StockQuantity, &it.LowStockThreshold,
		&it.CostPrice, &it.Price, &it.IsActive, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
