package repository

// Repos agrupa los repositorios atados a una misma transacción (unidad de trabajo).
type Repos struct {
	Products   ProductRepository
	Warehouses WarehouseRepository
	Stock      StockRepository
	Orders     OrderRepository
	Outbox     OutboxRepository
}
