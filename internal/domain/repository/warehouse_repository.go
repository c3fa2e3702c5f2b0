package repository

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	// GetByName devuelve nil, nil si no existe.
	GetByName(ctx context.Context, name string) (*entity.Warehouse, error)
	// GetOrCreate inserta la bodega si no existe una con el mismo nombre y devuelve la persistida.
	GetOrCreate(ctx context.Context, warehouse *entity.Warehouse) (*entity.Warehouse, error)
}
