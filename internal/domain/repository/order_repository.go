package repository

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order.
type OrderRepository interface {
	// Create inserta la orden PENDING y asigna ID.
	Create(ctx context.Context, order *entity.Order) error
	// Finalize escribe estado, bodega asignada y fecha; solo aplica sobre órdenes PENDING.
	Finalize(ctx context.Context, order *entity.Order) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
}
