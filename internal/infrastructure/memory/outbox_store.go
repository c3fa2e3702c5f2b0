package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// LockBatch reserva hasta batchSize eventos confirmados pendientes (o con lease vencido)
// para el relay. Los fallidos se vuelven a entregar mientras no superen OutboxMaxAttempts.
func (s *Store) LockBatch(_ context.Context, _ string, batchSize int, lease time.Duration) ([]*entity.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	ids := make([]int64, 0, len(s.outbox))
	for id, row := range s.outbox {
		if row.owner != nil {
			continue
		}
		switch row.e.Status {
		case entity.OutboxStatusPending:
		case entity.OutboxStatusFailed:
			if row.e.Attempts >= entity.OutboxMaxAttempts {
				continue
			}
		case entity.OutboxStatusInProgress:
			if now.Before(row.leaseUntil) {
				continue
			}
		default:
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > batchSize {
		ids = ids[:batchSize]
	}
	out := make([]*entity.OutboxEvent, 0, len(ids))
	for _, id := range ids {
		row := s.outbox[id]
		row.e.Status = entity.OutboxStatusInProgress
		row.leaseUntil = now.Add(lease)
		e := row.e
		out = append(out, &e)
	}
	return out, nil
}

// MarkSent marca los eventos como publicados.
func (s *Store) MarkSent(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, id := range ids {
		if row, ok := s.outbox[id]; ok {
			row.e.Status = entity.OutboxStatusSent
			row.e.SentAt = &now
		}
	}
	return nil
}

// MarkFailed registra un intento de publicación fallido.
func (s *Store) MarkFailed(_ context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.outbox[id]; ok {
		row.e.Status = entity.OutboxStatusFailed
		row.e.Attempts++
		row.e.LastError = errMsg
	}
	return nil
}

// Events devuelve los eventos confirmados ordenados por id.
func (s *Store) Events() []entity.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.OutboxEvent, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.owner == nil {
			out = append(out, row.e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Orders devuelve las órdenes confirmadas en almacenamiento, ordenadas por id.
func (s *Store) Orders() []entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Order, 0, len(s.orders))
	for _, row := range s.orders {
		if row.owner == nil {
			out = append(out, row.o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Quantity cantidad confirmada de producto en bodega; false si el registro no existe.
func (s *Store) Quantity(productName, warehouseName string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productName]
	if !ok || p.owner != nil {
		return 0, false
	}
	w, ok := s.warehouses[warehouseName]
	if !ok || w.owner != nil {
		return 0, false
	}
	row, ok := s.stock[stockKey{p.p.ID, w.w.ID}]
	if !ok || row.owner != nil {
		return 0, false
	}
	return row.rec.Quantity, true
}
