package entity

import (
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Estados de una orden.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusRejected  = "REJECTED"
)

// Order representa un intento de asignación auditable. Se crea en PENDING y se finaliza
// exactamente una vez (CONFIRMED con bodega asignada, o REJECTED).
type Order struct {
	ID                  int64
	ProductID           int64
	ProductName         string
	Units               int
	Status              string
	AssignedWarehouseID *int64
	AssignedWarehouse   string // nombre; vacío si no fue asignada
	TotalPrice          decimal.Decimal
	CreatedAt           time.Time
	FinalizedAt         *time.Time
}

// NewPendingOrder construye una orden PENDING para el producto.
func NewPendingOrder(product *Product, units int, now time.Time) *Order {
	return &Order{
		ProductID:   product.ID,
		ProductName: product.Name,
		Units:       units,
		Status:      OrderStatusPending,
		TotalPrice:  product.UnitPrice.Mul(decimal.NewFromInt(int64(units))),
		CreatedAt:   now,
	}
}

// Confirm PENDING -> CONFIRMED asignando la bodega.
func (o *Order) Confirm(w *Warehouse, now time.Time) error {
	if o.Status != OrderStatusPending {
		return domain.ErrInvalidTransition
	}
	id := w.ID
	o.Status = OrderStatusConfirmed
	o.AssignedWarehouseID = &id
	o.AssignedWarehouse = w.Name
	o.FinalizedAt = &now
	return nil
}

// Reject PENDING -> REJECTED.
func (o *Order) Reject(now time.Time) error {
	if o.Status != OrderStatusPending {
		return domain.ErrInvalidTransition
	}
	o.Status = OrderStatusRejected
	o.AssignedWarehouseID = nil
	o.AssignedWarehouse = ""
	o.FinalizedAt = &now
	return nil
}

// IsConfirmed indica si la orden quedó confirmada.
func (o *Order) IsConfirmed() bool {
	return o.Status == OrderStatusConfirmed
}
