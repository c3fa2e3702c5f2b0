package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// PlaceOrderRequest body para POST /api/orders/:product.
// Lat y Lon son obligatorios; mainWarehouse se acepta como alias de main_warehouse.
type PlaceOrderRequest struct {
	Units              int      `json:"units"`
	Lat                *float64 `json:"lat"`
	Lon                *float64 `json:"lon"`
	MainWarehouse      string   `json:"main_warehouse,omitempty"`
	MainWarehouseAlias string   `json:"mainWarehouse,omitempty"`
}

// PreferredWarehouse nombre de la bodega preferida, venga en cualquiera de los dos campos.
func (r PlaceOrderRequest) PreferredWarehouse() string {
	if r.MainWarehouse != "" {
		return r.MainWarehouse
	}
	return r.MainWarehouseAlias
}

// ProductRef producto embebido en las respuestas.
type ProductRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// OrderDTO representación pública de una orden.
type OrderDTO struct {
	ID                int64           `json:"id"`
	Product           ProductRef      `json:"product"`
	Units             int             `json:"units"`
	Status            string          `json:"status"`
	AssignedWarehouse string          `json:"assigned_warehouse,omitempty"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	CreatedAt         time.Time       `json:"created_at"`
	FinalizedAt       *time.Time      `json:"finalized_at,omitempty"`
}

// PlaceOrderResponse respuesta de POST /api/orders/:product (200 confirmada, 409 rechazada).
type PlaceOrderResponse struct {
	Order     OrderDTO `json:"order"`
	Confirmed bool     `json:"confirmed"`
}

// OrderFromEntity mapea la entidad a su DTO.
func OrderFromEntity(o *entity.Order) OrderDTO {
	return OrderDTO{
		ID:                o.ID,
		Product:           ProductRef{ID: o.ProductID, Name: o.ProductName},
		Units:             o.Units,
		Status:            o.Status,
		AssignedWarehouse: o.AssignedWarehouse,
		TotalPrice:        o.TotalPrice,
		CreatedAt:         o.CreatedAt,
		FinalizedAt:       o.FinalizedAt,
	}
}
