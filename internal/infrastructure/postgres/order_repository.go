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

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la orden PENDING y asigna ID y created_at.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (product_id, units, status, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		order.ProductID, order.Units, order.Status, order.TotalPrice, order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// Finalize escribe el estado final. Solo afecta órdenes PENDING; en otro caso ErrInvalidTransition.
func (r *OrderRepo) Finalize(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders SET status = $2, assigned_warehouse_id = $3, finalized_at = $4
		WHERE id = $1 AND status = 'PENDING'`
	tag, err := r.q.Exec(ctx, query, order.ID, order.Status, order.AssignedWarehouseID, order.FinalizedAt)
	if err != nil {
		return fmt.Errorf("finalize order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("orden %d: %w", order.ID, domain.ErrInvalidTransition)
	}
	return nil
}

// GetByID obtiene la orden con nombre de producto y bodega; nil, nil si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	query := `
		SELECT o.id, o.product_id, p.name, o.units, o.status, o.assigned_warehouse_id,
		       COALESCE(w.name, ''), o.total_price, o.created_at, o.finalized_at
		FROM orders o
		JOIN products p ON p.id = o.product_id
		LEFT JOIN warehouses w ON w.id = o.assigned_warehouse_id
		WHERE o.id = $1`
	var o entity.Order
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.ProductID, &o.ProductName, &o.Units, &o.Status, &o.AssignedWarehouseID,
		&o.AssignedWarehouse, &o.TotalPrice, &o.CreatedAt, &o.FinalizedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}
