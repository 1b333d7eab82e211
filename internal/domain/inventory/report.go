package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// UnitValue costo unitario de valorización: cost_price, si no price, si no 0.
func UnitValue(item entity.StockableItem) decimal.Decimal {
	if item.CostPrice != nil {
		return *item.CostPrice
	}
	if item.Price != nil {
		return *item.Price
	}
	return decimal.Zero
}

// AggregateStockValue suma cantidad × costo unitario de todos los ítems.
// Cifra de visualización; no se redondea.
func AggregateStockValue(items []entity.StockableItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromInt(int64(it.StockQuantity)).Mul(UnitValue(it)))
	}
	return total
}

// StockSummary totales para el tablero de inventario.
type StockSummary struct {
	TotalItems int
	InStock    int
	LowStock   int
	OutOfStock int
	TotalUnits int
	TotalValue decimal.Decimal
}

// SummarizeStock cuenta ítems por estado y calcula el valor total.
func SummarizeStock(items []entity.StockableItem, fallbackThreshold int) StockSummary {
	s := StockSummary{TotalItems: len(items), TotalValue: AggregateStockValue(items)}
	for _, it := range items {
		s.TotalUnits += it.StockQuantity
		switch DeriveStockStatusWithFallback(it.StockQuantity, it.LowStockThreshold, fallbackThreshold) {
		case entity.StockStatusOutOfStock:
			s.OutOfStock++
		case entity.StockStatusLowStock:
			s.LowStock++
		default:
			s.InStock++
		}
	}
	return s
}

// SortOrder orden cronológico elegido por el caller.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder interpreta "asc"/"desc"; cualquier otro valor es desc (más recientes primero).
func ParseSortOrder(s string) SortOrder {
	if s == string(SortAsc) {
		return SortAsc
	}
	return SortDesc
}

// DayGroup movimientos de un mismo día calendario.
type DayGroup struct {
	Date      string    // 2006-01-02 en la zona indicada
	Day       time.Time // 00:00 del día en la zona indicada
	Movements []entity.StockMovement
}

// GroupMovementsByDay agrupa por fecha calendario en loc (UTC si es nil).
// El orden de grupos y de movimientos dentro de cada grupo sigue order; empates conservan el
// orden de entrada. No modifica el slice recibido.
func GroupMovementsByDay(movements []entity.StockMovement, loc *time.Location, order SortOrder) []DayGroup {
	if loc == nil {
		loc = time.UTC
	}
	sorted := make([]entity.StockMovement, len(movements))
	copy(sorted, movements)
	sort.SliceStable(sorted, func(i, j int) bool {
		if order == SortAsc {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	groups := make([]DayGroup, 0)
	for _, m := range sorted {
		local := m.CreatedAt.In(loc)
		date := local.Format("2006-01-02")
		if n := len(groups); n > 0 && groups[n-1].Date == date {
			groups[n-1].Movements = append(groups[n-1].Movements, m)
			continue
		}
		groups = append(groups, DayGroup{
			Date:      date,
			Day:       time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc),
			Movements: []entity.StockMovement{m},
		})
	}
	return groups
}
