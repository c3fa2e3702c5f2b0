package entity

import "time"

// StockRecord cantidad disponible de un producto en una bodega. Clave única (ProductID, WarehouseID).
// Quantity nunca es negativa.
type StockRecord struct {
	ProductID   int64
	WarehouseID int64
	Quantity    int
	UpdatedAt   time.Time

	// Warehouse se completa en consultas que hacen join con warehouses (listados y búsqueda de candidatas).
	Warehouse *Warehouse
}
