package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestDeriveStockStatus(t *testing.T) {
	// Sin stock es quiebre sin importar el umbral.
	assert.Equal(t, entity.StockStatusOutOfStock, inventory.DeriveStockStatus(0, nil))
	assert.Equal(t, entity.StockStatusOutOfStock, inventory.DeriveStockStatus(0, intPtr(0)))
	assert.Equal(t, entity.StockStatusOutOfStock, inventory.DeriveStockStatus(0, intPtr(100)))

	// Umbral por defecto (10).
	assert.Equal(t, entity.StockStatusLowStock, inventory.DeriveStockStatus(1, nil))
	assert.Equal(t, entity.StockStatusLowStock, inventory.DeriveStockStatus(10, nil))
	assert.Equal(t, entity.StockStatusInStock, inventory.DeriveStockStatus(11, nil))

	// Umbral propio del ítem.
	assert.Equal(t, entity.StockStatusInStock, inventory.DeriveStockStatus(3, intPtr(2)))
	assert.Equal(t, entity.StockStatusLowStock, inventory.DeriveStockStatus(2, intPtr(2)))
	assert.Equal(t, entity.StockStatusInStock, inventory.DeriveStockStatus(1, intPtr(0)))

	// Respaldo configurable.
	assert.Equal(t, entity.StockStatusLowStock, inventory.DeriveStockStatusWithFallback(20, nil, 25))
}

func TestAggregateStockValue_UsaCostoLuegoPrecio(t *testing.T) {
	items := []entity.StockableItem{
		{ProductID: "a", StockQuantity: 4, CostPrice: decPtr("2.50"), Price: decPtr("9")},
		{ProductID: "b", StockQuantity: 3, Price: decPtr("10")},
		{ProductID: "c", StockQuantity: 100},
		{ProductID: "d", StockQuantity: 0, CostPrice: decPtr("1000")},
	}
	got := inventory.AggregateStockValue(items)
	assert.True(t, decimal.RequireFromString("40").Equal(got), "valor obtenido %s", got)
	assert.True(t, inventory.AggregateStockValue(nil).IsZero())
}

func TestSummarizeStock(t *testing.T) {
	items := []entity.StockableItem{
		{ProductID: "a", StockQuantity: 0},
		{ProductID: "b", StockQuantity: 5},
		{ProductID: "c", StockQuantity: 50, CostPrice: decPtr("1.5")},
		{ProductID: "d", StockQuantity: 8, LowStockThreshold: intPtr(3)},
	}
	s := inventory.SummarizeStock(items, inventory.DefaultLowStockThreshold)
	assert.Equal(t, 4, s.TotalItems)
	assert.Equal(t, 1, s.OutOfStock)
	assert.Equal(t, 1, s.LowStock)
	assert.Equal(t, 2, s.InStock)
	assert.Equal(t, 63, s.TotalUnits)
	assert.True(t, decimal.RequireFromString("75").Equal(s.TotalValue))
}

func TestGroupMovementsByDay_ZonaYOrden(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	// 03:00 UTC del día 2 todavía es el día 1 en Bogotá.
	movs := []entity.StockMovement{
		{ID: "m1", CreatedAt: time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)},
		{ID: "m2", CreatedAt: time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC)},
		{ID: "m3", CreatedAt: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)},
		{ID: "m4", CreatedAt: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)},
	}

	asc := inventory.GroupMovementsByDay(movs, bogota, inventory.SortAsc)
	require.Len(t, asc, 2)
	assert.Equal(t, "2026-03-01", asc[0].Date)
	assert.Equal(t, []string{"m1", "m2"}, ids(asc[0].Movements))
	assert.Equal(t, "2026-03-02", asc[1].Date)
	assert.Equal(t, []string{"m3", "m4"}, ids(asc[1].Movements), "empates conservan el orden de entrada")
	assert.Equal(t, 0, asc[1].Day.Hour())

	desc := inventory.GroupMovementsByDay(movs, bogota, inventory.SortDesc)
	require.Len(t, desc, 2)
	assert.Equal(t, "2026-03-02", desc[0].Date)
	assert.Equal(t, []string{"m3", "m4"}, ids(desc[0].Movements))
	assert.Equal(t, []string{"m2", "m1"}, ids(desc[1].Movements))

	utc := inventory.GroupMovementsByDay(movs, nil, inventory.SortAsc)
	require.Len(t, utc, 2)
	assert.Equal(t, []string{"m1"}, ids(utc[0].Movements))

	assert.Equal(t, "m1", movs[0].ID, "no modifica la entrada")
	assert.Empty(t, inventory.GroupMovementsByDay(nil, bogota, inventory.SortDesc))
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, inventory.SortAsc, inventory.ParseSortOrder("asc"))
	assert.Equal(t, inventory.SortDesc, inventory.ParseSortOrder("desc"))
	assert.Equal(t, inventory.SortDesc, inventory.ParseSortOrder(""))
}

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	// (10*100 + 10*200) / 20 = 150
	got := inventory.CostCalculator(10, decimal.NewFromInt(100), 10, decimal.NewFromInt(200))
	assert.True(t, decimal.NewFromInt(150).Equal(got))

	// Sin stock previo el costo es el de la entrada.
	got = inventory.CostCalculator(0, decimal.Zero, 4, decimal.RequireFromString("12.5"))
	assert.True(t, decimal.RequireFromString("12.5").Equal(got))

	assert.True(t, inventory.CostCalculator(0, decimal.Zero, 0, decimal.NewFromInt(7)).IsZero())
}

func ids(movs []entity.StockMovement) []string {
	out := make([]string, 0, len(movs))
	for _, m := range movs {
		out = append(out, m.ID)
	}
	return out
}
