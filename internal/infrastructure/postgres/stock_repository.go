package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetOrCreate devuelve el registro (producto, bodega), creándolo con cantidad 0 si no existe.
func (r *StockRepo) GetOrCreate(ctx context.Context, productID, warehouseID int64) (*entity.StockRecord, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, warehouse_id, quantity)
		VALUES ($1, $2, 0)
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("insert stock: %w", err)
	}
	rec, err := scanStock(r.q.QueryRow(ctx, `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock WHERE product_id = $1 AND warehouse_id = $2`, productID, warehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("stock %d/%d: %w", productID, warehouseID, domain.ErrNotFound)
	}
	return rec, nil
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
// Devuelve nil, nil si el registro no existe.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.StockRecord, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	rec, err := scanStock(r.q.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return rec, nil
}

// TryDecrement descuenta units solo si hay cantidad suficiente al momento de aplicar.
// La condición va en la misma sentencia, así que nunca deja la cantidad negativa.
func (r *StockRepo) TryDecrement(ctx context.Context, record *entity.StockRecord, units int) (bool, error) {
	if units <= 0 {
		return false, fmt.Errorf("%w: units debe ser mayor que 0", domain.ErrInvalidInput)
	}
	query := `
		UPDATE stock SET quantity = quantity - $3, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2 AND quantity >= $3
		RETURNING quantity, updated_at`
	err := r.q.QueryRow(ctx, query, record.ProductID, record.WarehouseID, units).Scan(&record.Quantity, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return true, nil
}

// Increment suma units al registro.
func (r *StockRepo) Increment(ctx context.Context, record *entity.StockRecord, units int) error {
	if units <= 0 {
		return fmt.Errorf("%w: units debe ser mayor que 0", domain.ErrInvalidInput)
	}
	query := `
		UPDATE stock SET quantity = quantity + $3, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2
		RETURNING quantity, updated_at`
	err := r.q.QueryRow(ctx, query, record.ProductID, record.WarehouseID, units).Scan(&record.Quantity, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("stock %d/%d: %w", record.ProductID, record.WarehouseID, domain.ErrNotFound)
		}
		return fmt.Errorf("increment stock: %w", err)
	}
	return nil
}

const stockJoinQuery = `
	SELECT s.product_id, s.warehouse_id, s.quantity, s.updated_at,
	       w.id, w.name, w.latitude, w.longitude, w.capacity, w.active, w.created_at
	FROM stock s
	JOIN warehouses w ON w.id = s.warehouse_id`

// ListByProduct lista el stock del producto en todas las bodegas (sin bloqueo).
func (r *StockRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.StockRecord, error) {
	rows, err := r.q.Query(ctx, stockJoinQuery+`
	WHERE s.product_id = $1
	ORDER BY w.id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	return collectStock(rows)
}

// ListWithStock bodegas activas con al menos minUnits del producto (lectura sin bloqueo).
func (r *StockRepo) ListWithStock(ctx context.Context, productID int64, minUnits int) ([]*entity.StockRecord, error) {
	rows, err := r.q.Query(ctx, stockJoinQuery+`
	WHERE s.product_id = $1 AND s.quantity >= $2 AND w.active
	ORDER BY w.id`, productID, minUnits)
	if err != nil {
		return nil, fmt.Errorf("list stock candidates: %w", err)
	}
	return collectStock(rows)
}

func collectStock(rows pgx.Rows) ([]*entity.StockRecord, error) {
	defer rows.Close()
	list := make([]*entity.StockRecord, 0)
	for rows.Next() {
		var s entity.StockRecord
		var w entity.Warehouse
		if err := rows.Scan(
			&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt,
			&w.ID, &w.Name, &w.Latitude, &w.Longitude, &w.Capacity, &w.Active, &w.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		s.Warehouse = &w
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock: %w", err)
	}
	return list, nil
}

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	if err := row.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
