package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// InventoryHandler maneja reposición y consulta de stock por producto.
type InventoryHandler struct {
	restock *inventory.RestockUseCase
	query   *inventory.QueryUseCase
	log     *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(restock *inventory.RestockUseCase, query *inventory.QueryUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{restock: restock, query: query, log: log}
}

// Restock godoc
// @Summary      Reponer stock
// @Description  Suma unidades al stock del producto en la bodega. Crea producto y bodega si no existen; una bodega nueva requiere latitude y longitude.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product  path  string              true  "Nombre del producto"
// @Param        body     body  dto.RestockRequest  true  "units, warehouse, latitude?, longitude?, capacity?"
// @Success      200  {object}  dto.RestockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/{product}/restock [post]
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	product, err := productParam(c)
	if err != nil {
		return badBody(c, "nombre de producto inválido")
	}
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, `payload: {"units":int,"warehouse":"Nombre"}`)
	}
	rec, err := h.restock.Restock(c.UserContext(), inventory.RestockInput{
		ProductName:   product,
		Units:         in.Units,
		WarehouseName: in.Warehouse,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Capacity:      in.Capacity,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.RestockResponse{
		ProductName:   entity.CanonicalName(product),
		WarehouseName: rec.Warehouse.Name,
		Quantity:      rec.Quantity,
		UpdatedAt:     rec.UpdatedAt,
	})
}

// GetInventory godoc
// @Summary      Stock de un producto por bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product  path  string  true  "Nombre del producto"
// @Success      200  {array}   dto.StockLevelDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/{product} [get]
func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	product, err := productParam(c)
	if err != nil {
		return badBody(c, "nombre de producto inválido")
	}
	records, err := h.query.GetInventory(c.UserContext(), product)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockLevelsFromEntities(records))
}
