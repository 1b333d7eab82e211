package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AdjustStock   *inventory.AdjustStockUseCase
	StockQuery    *inventory.StockQueryUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Logger        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", ActorMiddleware())

	invGroup := api.Group("/inventory")
	h := NewInventoryHandler(deps.AdjustStock, deps.StockQuery, deps.Replenishment, deps.Logger)

	// Ajustes (requieren X-User-ID)
	invGroup.Post("/adjustments", h.Adjust)
	invGroup.Post("/adjustments/bulk", h.BulkAdjust)

	// Consultas por SKU
	items := invGroup.Group("/items/:product_id")
	items.Get("/movements", h.ListMovements)
	items.Get("/movements/by-day", h.MovementsByDay)
	items.Get("/status", h.ItemStatus)
	items.Get("/ledger/verify", h.VerifyLedger)

	invGroup.Get("/movements/:id", h.GetMovement)

	invGroup.Get("/summary", h.Summary)
	invGroup.Get("/replenishment-list", h.GetReplenishmentList)
}
