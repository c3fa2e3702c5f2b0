package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

const warehouseColumns = `id, name, latitude, longitude, capacity, active, created_at`

// GetByName obtiene una bodega por nombre; nil, nil si no existe.
func (r *WarehouseRepo) GetByName(ctx context.Context, name string) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE name = $1`
	w, err := scanWarehouse(r.q.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

// GetOrCreate inserta la bodega si no existe otra con el mismo nombre; devuelve la persistida.
func (r *WarehouseRepo) GetOrCreate(ctx context.Context, warehouse *entity.Warehouse) (*entity.Warehouse, error) {
	query := `
		INSERT INTO warehouses (name, latitude, longitude, capacity, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING
		RETURNING ` + warehouseColumns
	w, err := scanWarehouse(r.q.QueryRow(ctx, query,
		warehouse.Name, warehouse.Latitude, warehouse.Longitude, warehouse.Capacity, warehouse.Active,
	))
	if err != nil {
		return nil, fmt.Errorf("insert warehouse: %w", err)
	}
	if w != nil {
		return w, nil
	}
	w, err = r.GetByName(ctx, warehouse.Name)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("get or create warehouse %q: fila no visible tras conflicto", warehouse.Name)
	}
	return w, nil
}

func scanWarehouse(row pgx.Row) (*entity.Warehouse, error) {
	var w entity.Warehouse
	if err := row.Scan(&w.ID, &w.Name, &w.Latitude, &w.Longitude, &w.Capacity, &w.Active, &w.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}
