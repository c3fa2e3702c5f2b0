package repository

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// StockRepository define el puerto del libro de stock por (producto, bodega).
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// GetOrCreate devuelve el registro existente o lo crea con cantidad 0.
	GetOrCreate(ctx context.Context, productID, warehouseID int64) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	// Devuelve nil, nil si el registro no existe.
	GetForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.StockRecord, error)
	// TryDecrement resta units solo si quantity >= units en el momento de aplicar (una sola sentencia).
	TryDecrement(ctx context.Context, record *entity.StockRecord, units int) (bool, error)
	// Increment suma units sin condición (reposición).
	Increment(ctx context.Context, record *entity.StockRecord, units int) error
	// ListByProduct lista los registros del producto con su bodega (solo lectura).
	ListByProduct(ctx context.Context, productID int64) ([]*entity.StockRecord, error)
	// ListWithStock lectura sin bloqueo de bodegas activas con quantity >= minUnits, ordenadas por bodega.
	ListWithStock(ctx context.Context, productID int64, minUnits int) ([]*entity.StockRecord, error)
}
