package inventory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// OrderEventPayload cuerpo de order.confirmed / order.rejected.
type OrderEventPayload struct {
	OrderID     int64           `json:"order_id"`
	ProductName string          `json:"product_name"`
	Units       int             `json:"units"`
	Status      string          `json:"status"`
	Warehouse   string          `json:"warehouse,omitempty"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// StockRestockedPayload cuerpo de stock.restocked.
type StockRestockedPayload struct {
	ProductName   string    `json:"product_name"`
	WarehouseName string    `json:"warehouse_name"`
	Units         int       `json:"units"`
	Quantity      int       `json:"quantity"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func orderEvent(o *entity.Order) (*entity.OutboxEvent, error) {
	typ := entity.EventOrderRejected
	if o.IsConfirmed() {
		typ = entity.EventOrderConfirmed
	}
	occurred := o.CreatedAt
	if o.FinalizedAt != nil {
		occurred = *o.FinalizedAt
	}
	return newOutboxEvent("order", strconv.FormatInt(o.ID, 10), typ, OrderEventPayload{
		OrderID:     o.ID,
		ProductName: o.ProductName,
		Units:       o.Units,
		Status:      o.Status,
		Warehouse:   o.AssignedWarehouse,
		TotalPrice:  o.TotalPrice,
		OccurredAt:  occurred,
	})
}

func restockEvent(p *entity.Product, w *entity.Warehouse, units int, rec *entity.StockRecord) (*entity.OutboxEvent, error) {
	aggID := fmt.Sprintf("%d:%d", rec.ProductID, rec.WarehouseID)
	return newOutboxEvent("stock", aggID, entity.EventStockRestocked, StockRestockedPayload{
		ProductName:   p.Name,
		WarehouseName: w.Name,
		Units:         units,
		Quantity:      rec.Quantity,
		OccurredAt:    rec.UpdatedAt,
	})
}

func newOutboxEvent(aggType, aggID, typ string, payload any) (*entity.OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar evento %s: %w", typ, err)
	}
	return &entity.OutboxEvent{
		EventID:       uuid.NewString(),
		AggregateType: aggType,
		AggregateID:   aggID,
		Type:          typ,
		Payload:       raw,
		Status:        entity.OutboxStatusPending,
	}, nil
}
