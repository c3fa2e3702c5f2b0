package dto

import (
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// RestockRequest body para POST /api/inventory/:product/restock.
// Latitude/Longitude solo se usan si la bodega no existe todavía.
type RestockRequest struct {
	Units     int      `json:"units"`
	Warehouse string   `json:"warehouse"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Capacity  *int     `json:"capacity,omitempty"`
}

// RestockResponse estado del registro de stock tras la reposición.
type RestockResponse struct {
	ProductName   string    `json:"product_name"`
	WarehouseName string    `json:"warehouse_name"`
	Quantity      int       `json:"quantity"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StockLevelDTO una fila de GET /api/inventory/:product.
type StockLevelDTO struct {
	WarehouseID   int64     `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name"`
	Quantity      int       `json:"quantity"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StockLevelsFromEntities mapea los registros (con Warehouse cargado) a DTOs.
func StockLevelsFromEntities(records []*entity.StockRecord) []StockLevelDTO {
	out := make([]StockLevelDTO, 0, len(records))
	for _, r := range records {
		d := StockLevelDTO{WarehouseID: r.WarehouseID, Quantity: r.Quantity, UpdatedAt: r.UpdatedAt}
		if r.Warehouse != nil {
			d.WarehouseName = r.Warehouse.Name
		}
		out = append(out, d)
	}
	return out
}
