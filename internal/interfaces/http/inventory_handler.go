package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// InventoryHandler maneja ajustes de stock y consultas del ledger.
type InventoryHandler struct {
	adjust        *inventory.AdjustStockUseCase
	query         *inventory.StockQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
	log           *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	adjust *inventory.AdjustStockUseCase,
	query *inventory.StockQueryUseCase,
	replenishment *inventory.ReplenishmentUseCase,
	log *logger.Logger,
) *InventoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InventoryHandler{adjust: adjust, query: query, replenishment: replenishment, log: log}
}

// Adjust godoc
// @Summary      Ajustar stock
// @Description  Aplica set/add/sub sobre un producto o variación y registra el movimiento en el ledger.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header  string                  true  "Usuario que realiza el ajuste"
// @Param        body       body    dto.AdjustStockRequest  true  "product_id, variation_id, operation, quantity, reason"
// @Success      201  {object}  dto.AdjustStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.adjust.Adjust(c.UserContext(), inventory.FromAdjustRequest(GetUserID(c), in))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustStockResponse{
		Movement:    inventory.ToMovementResponse(out.Movement),
		StockStatus: string(out.Status),
	})
}

// BulkAdjust godoc
// @Summary      Ajuste masivo de stock
// @Description  Aplica hasta 500 ajustes independientes. Éxito parcial: responde 200 con el resultado de cada ítem.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header  string                 true  "Usuario que realiza el ajuste"
// @Param        body       body    dto.BulkAdjustRequest  true  "adjustments"
// @Success      200  {object}  dto.BulkAdjustResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments/bulk [post]
func (h *InventoryHandler) BulkAdjust(c *fiber.Ctx) error {
	var in dto.BulkAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	userID := GetUserID(c)
	reqs := make([]entity.StockAdjustmentRequest, 0, len(in.Adjustments))
	for _, a := range in.Adjustments {
		reqs = append(reqs, inventory.FromAdjustRequest(userID, a))
	}

	res, err := h.adjust.BulkAdjust(c.UserContext(), reqs)
	if err != nil {
		return h.fail(c, err)
	}

	out := dto.BulkAdjustResponse{
		SuccessCount: res.SuccessCount,
		ErrorCount:   res.ErrorCount,
		Results:      make([]dto.BulkItemResult, 0, len(res.Items)),
	}
	for _, it := range res.Items {
		r := dto.BulkItemResult{
			Index:       it.Index,
			ProductID:   it.Request.ProductID,
			VariationID: it.Request.VariationID,
			OK:          it.Err == nil,
		}
		if it.Err != nil {
			_, e := errorStatus(it.Err)
			r.Code, r.Message = e.Code, e.Message
		} else {
			m := inventory.ToMovementResponse(it.Outcome.Movement)
			r.Movement = &m
		}
		out.Results = append(out.Results, r)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos de un SKU
// @Tags         inventory
// @Produce      json
// @Param        product_id      path   string  true   "Producto"
// @Param        variation_id    query  string  false  "Variación"
// @Param        all_variations  query  bool    false  "Incluir todas las variaciones del producto"
// @Param        from            query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to              query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit           query  int     false  "Máximo 100 (default 20)"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{product_id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter, err := h.movementFilter(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.query.ListMovements(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetMovement godoc
// @Summary      Obtener un movimiento del ledger
// @Tags         inventory
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	out, err := h.query.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
		}
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// MovementsByDay godoc
// @Summary      Movimientos agrupados por día
// @Tags         inventory
// @Produce      json
// @Param        product_id    path   string  true   "Producto"
// @Param        variation_id  query  string  false  "Variación"
// @Param        order         query  string  false  "asc o desc (default desc)"
// @Success      200  {array}   dto.MovementDayGroupDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{product_id}/movements/by-day [get]
func (h *InventoryHandler) MovementsByDay(c *fiber.Ctx) error {
	filter, err := h.movementFilter(c)
	if err != nil {
		return h.fail(c, err)
	}
	groups, err := h.query.MovementsByDay(c.UserContext(), filter, domaininv.ParseSortOrder(c.Query("order")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(groups)
}

// ItemStatus godoc
// @Summary      Estado de stock de un SKU
// @Tags         inventory
// @Produce      json
// @Param        product_id    path   string  true   "Producto"
// @Param        variation_id  query  string  false  "Variación"
// @Success      200  {object}  dto.ItemStatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{product_id}/status [get]
func (h *InventoryHandler) ItemStatus(c *fiber.Ctx) error {
	out, err := h.query.ItemStatus(c.UserContext(), c.Params("product_id"), c.Query("variation_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// VerifyLedger godoc
// @Summary      Verificar la cadena de movimientos de un SKU
// @Tags         inventory
// @Produce      json
// @Param        product_id    path   string  true   "Producto"
// @Param        variation_id  query  string  false  "Variación"
// @Success      200  {object}  dto.LedgerVerificationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{product_id}/ledger/verify [get]
func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	out, err := h.query.VerifyLedger(c.UserContext(), c.Params("product_id"), c.Query("variation_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de inventario
// @Description  Conteos por estado, unidades y valor total de los SKUs activos.
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  dto.StockSummaryDTO
// @Router       /api/inventory/summary [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	out, err := h.query.StockSummary(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  SKUs activos en stock bajo o agotados con la cantidad sugerida de pedido.
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

func (h *InventoryHandler) fail(c *fiber.Ctx, err error) error {
	status, body := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Path()).Msg("request fallido")
	}
	return c.Status(status).JSON(body)
}

func (h *InventoryHandler) movementFilter(c *fiber.Ctx) (repository.MovementFilter, error) {
	f := repository.MovementFilter{
		ProductID:     c.Params("product_id"),
		VariationID:   c.Query("variation_id"),
		AllVariations: c.QueryBool("all_variations", false),
		Limit:         c.QueryInt("limit", 0),
		Offset:        c.QueryInt("offset", 0),
	}
	loc := h.query.Location()
	var err error
	if f.From, err = parseTimeParam(c.Query("from"), loc, false); err != nil {
		return f, err
	}
	if f.To, err = parseTimeParam(c.Query("to"), loc, true); err != nil {
		return f, err
	}
	return f, nil
}

// parseTimeParam acepta RFC3339 o YYYY-MM-DD. Una fecha sola es un día calendario en loc;
// para "to" cubre el día completo.
func parseTimeParam(s string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q inválida", domain.ErrInvalidInput, s)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
