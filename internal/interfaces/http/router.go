package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/pkg/jwt"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	PlaceOrder *inventory.PlaceOrderUseCase
	Restock    *inventory.RestockUseCase
	Query      *inventory.QueryUseCase
	Log        *logger.Logger
	// JWTSecret vacío deja las rutas abiertas (modo local).
	JWTSecret string
	// Idempotency nil desactiva el soporte de Idempotency-Key.
	Idempotency IdempotencyStore
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	placeGuards := []fiber.Handler{}
	restockGuards := []fiber.Handler{}
	if deps.JWTSecret != "" {
		api.Use(AuthMiddleware(deps.JWTSecret))
		restockGuards = append(restockGuards, RequireRole(jwt.RoleAdmin, jwt.RoleOperario))
	}
	if deps.Idempotency != nil {
		placeGuards = append(placeGuards, Idempotency(deps.Idempotency, log))
	}

	// Orders
	orderHandler := NewOrderHandler(deps.PlaceOrder, deps.Query, log)
	orders := api.Group("/orders")
	orders.Get("/id/:id", orderHandler.GetByID)
	orders.Post("/:product", append(placeGuards, orderHandler.PlaceOrder)...)

	// Inventory
	inventoryHandler := NewInventoryHandler(deps.Restock, deps.Query, log)
	inv := api.Group("/inventory")
	inv.Get("/:product", inventoryHandler.GetInventory)
	inv.Post("/:product/restock", append(restockGuards, inventoryHandler.Restock)...)
}
