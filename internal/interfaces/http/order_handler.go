package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// OrderHandler maneja la colocación y consulta de órdenes.
type OrderHandler struct {
	placeOrder *inventory.PlaceOrderUseCase
	query      *inventory.QueryUseCase
	log        *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(placeOrder *inventory.PlaceOrderUseCase, query *inventory.QueryUseCase, log *logger.Logger) *OrderHandler {
	return &OrderHandler{placeOrder: placeOrder, query: query, log: log}
}

// PlaceOrder godoc
// @Summary      Colocar una orden
// @Description  Asigna la orden a la bodega preferida o a la más cercana con stock. 409 si se rechaza por falta de stock.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product          path    string                 true   "Nombre del producto"
// @Param        Idempotency-Key  header  string                 false  "Clave para repetir la respuesta ante reintentos"
// @Param        body             body    dto.PlaceOrderRequest  true   "units, lat, lon, main_warehouse"
// @Success      200  {object}  dto.PlaceOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.PlaceOrderResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/orders/{product} [post]
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	product, err := productParam(c)
	if err != nil {
		return badBody(c, "nombre de producto inválido")
	}
	var in dto.PlaceOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, `payload: {"units":int,"lat":float,"lon":float,"main_warehouse"?:string}`)
	}
	if in.Lat == nil || in.Lon == nil {
		return badBody(c, "lat y lon son obligatorios")
	}
	order, confirmed, err := h.placeOrder.PlaceOrder(c.UserContext(), inventory.PlaceOrderInput{
		ProductName:        product,
		Units:              in.Units,
		Latitude:           *in.Lat,
		Longitude:          *in.Lon,
		PreferredWarehouse: in.PreferredWarehouse(),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	status := fiber.StatusOK
	if !confirmed {
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(dto.PlaceOrderResponse{Order: dto.OrderFromEntity(order), Confirmed: confirmed})
}

// GetByID godoc
// @Summary      Consultar una orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la orden"
// @Success      200  {object}  dto.OrderDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/id/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	order, err := h.query.GetOrder(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OrderFromEntity(order))
}
