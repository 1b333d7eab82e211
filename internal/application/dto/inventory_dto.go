package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/inventory/adjustments.
type AdjustStockRequest struct {
	ProductID     string           `json:"product_id"`
	VariationID   string           `json:"variation_id,omitempty"`
	Operation     string           `json:"operation"` // set, add, sub
	Quantity      int              `json:"quantity"`
	Reason        string           `json:"reason"` // sale, return, restock, adjustment, damaged, lost
	Notes         string           `json:"notes,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"` // solo add: recalcula costo promedio
}

// BulkAdjustRequest body para POST /api/inventory/adjustments/bulk.
type BulkAdjustRequest struct {
	Adjustments []AdjustStockRequest `json:"adjustments"`
}

// MovementResponse registro del ledger.
type MovementResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	VariationID    string    `json:"variation_id,omitempty"`
	Type           string    `json:"type"`
	Reason         string    `json:"reason"`
	Quantity       int       `json:"quantity"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	ReferenceType  string    `json:"reference_type,omitempty"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AdjustStockResponse respuesta de un ajuste aceptado.
type AdjustStockResponse struct {
	Movement    MovementResponse `json:"movement"`
	StockStatus string           `json:"stock_status"`
}

// BulkItemResult resultado de un ítem del lote, en el mismo orden del request.
type BulkItemResult struct {
	Index       int               `json:"index"`
	ProductID   string            `json:"product_id"`
	VariationID string            `json:"variation_id,omitempty"`
	OK          bool              `json:"ok"`
	Movement    *MovementResponse `json:"movement,omitempty"`
	Code        string            `json:"code,omitempty"`
	Message     string            `json:"message,omitempty"`
}

// BulkAdjustResponse resultado de un lote con éxito parcial.
type BulkAdjustResponse struct {
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	Results      []BulkItemResult `json:"results"`
}

// MovementListResponse página del ledger.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementDayGroupDTO movimientos de un día calendario.
type MovementDayGroupDTO struct {
	Date      string             `json:"date"` // 2006-01-02
	Count     int                `json:"count"`
	NetChange int                `json:"net_change"`
	Movements []MovementResponse `json:"movements"`
}

// ItemStatusResponse estado derivado de un SKU.
type ItemStatusResponse struct {
	ProductID         string          `json:"product_id"`
	VariationID       string          `json:"variation_id,omitempty"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	StockStatus       string          `json:"stock_status"`
	UnitValue         decimal.Decimal `json:"unit_value"`
	StockValue        decimal.Decimal `json:"stock_value"`
	IsActive          bool            `json:"is_active"`
}

// StockSummaryDTO respuesta de GET /api/inventory/summary.
type StockSummaryDTO struct {
	TotalItems      int             `json:"total_items"`
	InStockCount    int             `json:"in_stock_count"`
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	TotalUnits      int             `json:"total_units"`
	TotalValue      decimal.Decimal `json:"total_value"`
}

// LedgerVerificationDTO resultado de recorrer la cadena de movimientos de un SKU.
type LedgerVerificationDTO struct {
	ProductID     string `json:"product_id"`
	VariationID   string `json:"variation_id,omitempty"`
	Movements     int    `json:"movements"`
	InitialStock  int    `json:"initial_stock"`
	LedgerStock   int    `json:"ledger_stock"`
	StockQuantity int    `json:"stock_quantity"`
	Consistent    bool   `json:"consistent"`
	Problem       string `json:"problem,omitempty"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un SKU en stock bajo o agotado.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	VariationID        string          `json:"variation_id,omitempty"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	CurrentStock       int             `json:"current_stock"`
	LowStockThreshold  int             `json:"low_stock_threshold"`
	StockStatus        string          `json:"stock_status"`
	IdealStock         int             `json:"ideal_stock"`          // umbral * 1.5
	SuggestedOrderQty  int             `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // cost_price o price
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
