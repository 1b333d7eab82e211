package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockableItem representa un producto simple o una variación de un producto variable.
// VariationID vacío indica el producto simple. StockQuantity nunca es negativo en reposo.
type StockableItem struct {
	ProductID         string
	VariationID       string
	SKU               string
	Name              string
	StockQuantity     int
	LowStockThreshold *int             // nil = umbral por defecto
	CostPrice         *decimal.Decimal // costo de compra (valorización)
	Price             *decimal.Decimal // precio de venta (fallback de valorización)
	IsActive          bool
	UpdatedAt         time.Time
}

// Key identifica el SKU (producto o producto+variación).
func (i StockableItem) Key() string {
	return ItemKey(i.ProductID, i.VariationID)
}

// ItemKey arma la clave de SKU usada para agrupar y particionar eventos.
func ItemKey(productID, variationID string) string {
	if variationID == "" {
		return productID
	}
	return productID + ":" + variationID
}

// StockStatus vista derivada del nivel de stock; se recalcula en cada lectura y no se persiste.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)
