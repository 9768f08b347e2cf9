package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-engine/internal/application/dto"
	"github.com/jhoicas/inventario-engine/internal/application/inventory"
	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-engine/internal/domain/inventory"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP de movimientos, existencias y precios (protegido).
type InventoryHandler struct {
	movements     *inventory.RegisterMovementUseCase
	queries       *inventory.MovementQueryUseCase
	stock         *inventory.StockQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
	prices        *inventory.PriceReconciliationUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	movements *inventory.RegisterMovementUseCase,
	queries *inventory.MovementQueryUseCase,
	stock *inventory.StockQueryUseCase,
	replenishment *inventory.ReplenishmentUseCase,
	prices *inventory.PriceReconciliationUseCase,
) *InventoryHandler {
	return &InventoryHandler{
		movements:     movements,
		queries:       queries,
		stock:         stock,
		replenishment: replenishment,
		prices:        prices,
	}
}

// CreateMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "type, bodegas según el tipo, reason (ADJUSTMENT) y líneas"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	movementType, err := entity.ParseMovementType(in.Type)
	if err != nil {
		return writeError(c, domain.ErrUnknownMovementType)
	}
	input := inventory.MovementInput{
		Type:                   movementType,
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Reason:                 in.Reason,
		Notes:                  in.Notes,
		ActorID:                userID,
		ApplyPrices:            in.ApplyPrices,
		ConfirmLowerPrices:     in.ConfirmLowerPrices,
		Lines:                  make([]inventory.MovementLineInput, 0, len(in.Lines)),
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, inventory.MovementLineInput{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	res, err := h.movements.CreateMovement(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}
	m, err := h.queries.GetMovement(c.UserContext(), res.ID)
	if err != nil {
		return writeError(c, err)
	}
	out := toMovementResponse(m)
	out.PriceUpdates = toPriceUpdateResponses(res.PriceUpdates)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	m, err := h.queries.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponse(m))
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Description  Cabeceras sin líneas, más recientes primero. warehouse_id filtra por origen o destino.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        type          query  string  false  "RECEIPT | ISSUE | TRANSFER | ADJUSTMENT"
// @Param        warehouse_id  query  string  false  "Bodega origen o destino"
// @Param        limit         query  int     false  "Límite (default 50, máx 200)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{WarehouseID: c.Query("warehouse_id")}
	if t := c.Query("type"); t != "" {
		parsed, err := entity.ParseMovementType(t)
		if err != nil {
			return writeError(c, domain.ErrUnknownMovementType)
		}
		filter.Type = parsed
	}
	filter.Limit, filter.Offset = inventory.NormalizePage(c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	list, err := h.queries.ListMovements(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}
	for _, m := range list {
		out.Items = append(out.Items, *toMovementResponse(m))
	}
	return c.JSON(out)
}

// ProductStock godoc
// @Summary      Existencias de un producto por bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock [get]
func (h *InventoryHandler) ProductStock(c *fiber.Ctx) error {
	productID := c.Params("id")
	records, total, err := h.stock.GetProductStock(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ProductStockResponse{ProductID: productID, Total: total, Warehouses: make([]dto.StockByWarehouse, 0, len(records))}
	for _, r := range records {
		out.Warehouses = append(out.Warehouses, dto.StockByWarehouse{WarehouseID: r.WarehouseID, WarehouseName: r.WarehouseName, Quantity: r.Quantity})
	}
	return c.JSON(out)
}

// WarehouseStock godoc
// @Summary      Productos con existencias en una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {array}   dto.WarehouseStockItem
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/warehouses/{id}/stock [get]
func (h *InventoryHandler) WarehouseStock(c *fiber.Ctx) error {
	records, err := h.stock.GetWarehouseStock(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.WarehouseStockItem, 0, len(records))
	for _, r := range records {
		out = append(out, dto.WarehouseStockItem{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			UpdatedAt:   r.UpdatedAt,
			UpdatedBy:   r.UpdatedBy,
		})
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos bajo el stock mínimo
// @Description  Cantidad sugerida de pedido para llegar a 1.5 veces el mínimo; prioridad 1 = déficit relativo mayor.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.LowStockItemDTO
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.replenishment.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// CheckPrices godoc
// @Summary      Comparar precios entrantes con el catálogo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PriceCheckRequest  true  "Líneas con precio"
// @Success      200   {array}   dto.PriceUpdateResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/price-updates/check [post]
func (h *InventoryHandler) CheckPrices(c *fiber.Ctx) error {
	var in dto.PriceCheckRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	updates, err := h.prices.CheckPriceUpdates(c.UserContext(), toPriceLines(in.Lines))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPriceUpdateResponses(updates))
}

// ApplyPrices godoc
// @Summary      Aplicar precios entrantes al catálogo
// @Description  Los aumentos se aplican siempre; las disminuciones solo con confirm_lower_prices.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PriceCheckRequest  true  "Líneas con precio y confirmación"
// @Success      200   {array}   dto.PriceUpdateResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/price-updates/apply [post]
func (h *InventoryHandler) ApplyPrices(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.PriceCheckRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	updates, err := h.prices.ApplyPriceUpdates(c.UserContext(), toPriceLines(in.Lines), in.ConfirmLowerPrices, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPriceUpdateResponses(updates))
}

func toMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	createdAt := m.CreatedAt
	out := &dto.MovementResponse{
		ID:                     m.ID,
		Number:                 m.Number,
		Type:                   m.Type.String(),
		SourceWarehouseID:      m.SourceWarehouseID,
		DestinationWarehouseID: m.DestinationWarehouseID,
		Reason:                 m.Reason,
		Notes:                  m.Notes,
		CreatedAt:              &createdAt,
		CreatedBy:              m.CreatedBy,
	}
	for _, l := range m.Lines {
		out.Lines = append(out.Lines, dto.MovementLineRequest{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return out
}

func toPriceLines(lines []dto.PriceLineRequest) []invdomain.PriceLine {
	out := make([]invdomain.PriceLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, invdomain.PriceLine{ProductID: l.ProductID, UnitPrice: l.UnitPrice})
	}
	return out
}

func toPriceUpdateResponses(updates []entity.PriceUpdateInfo) []dto.PriceUpdateResponse {
	out := make([]dto.PriceUpdateResponse, 0, len(updates))
	for _, u := range updates {
		out = append(out, dto.PriceUpdateResponse{
			ProductID:         u.ProductID,
			ProductName:       u.ProductName,
			CurrentPrice:      u.CurrentPrice,
			NewPrice:          u.NewPrice,
			NeedsConfirmation: u.NeedsConfirmation,
			Applied:           u.Applied,
		})
	}
	return out
}
