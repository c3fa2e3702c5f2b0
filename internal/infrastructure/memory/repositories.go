package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

type productRepo struct {
	s *Store
	t *tx
}

func (r *productRepo) GetOrCreateByName(ctx context.Context, name string) (*entity.Product, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		row, ok := s.products[name]
		if !ok {
			break
		}
		if visible(row.owner, r.t) {
			p := row.p
			return &p, nil
		}
		// otra transacción insertó el mismo nombre: esperar su commit o rollback
		if err := s.waitFor(ctx, r.t, row.owner); err != nil {
			return nil, err
		}
	}
	// la clave puede venir de un buffer reutilizable (parámetros de Fiber)
	name = strings.Clone(name)
	s.productSeq++
	row := &productRow{
		p:     entity.Product{ID: s.productSeq, Name: name, UnitPrice: decimal.Zero, CreatedAt: s.now()},
		owner: r.t,
	}
	s.products[name] = row
	r.t.products = append(r.t.products, name)
	p := row.p
	return &p, nil
}

func (r *productRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.products[name]
	if !ok || !visible(row.owner, r.t) {
		return nil, nil
	}
	p := row.p
	return &p, nil
}

type warehouseRepo struct {
	s *Store
	t *tx
}

func (r *warehouseRepo) GetByName(_ context.Context, name string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.warehouses[name]
	if !ok || !visible(row.owner, r.t) {
		return nil, nil
	}
	w := row.w
	return &w, nil
}

func (r *warehouseRepo) GetOrCreate(ctx context.Context, warehouse *entity.Warehouse) (*entity.Warehouse, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		row, ok := s.warehouses[warehouse.Name]
		if !ok {
			break
		}
		if visible(row.owner, r.t) {
			w := row.w
			return &w, nil
		}
		if err := s.waitFor(ctx, r.t, row.owner); err != nil {
			return nil, err
		}
	}
	s.warehouseSeq++
	w := *warehouse
	w.Name = strings.Clone(w.Name)
	w.ID = s.warehouseSeq
	w.CreatedAt = s.now()
	row := &warehouseRow{w: w, owner: r.t}
	s.warehouses[w.Name] = row
	s.warehouseIDs[w.ID] = row
	r.t.warehouses = append(r.t.warehouses, w.Name)
	return &w, nil
}

type stockRepo struct {
	s *Store
	t *tx
}

func (r *stockRepo) GetOrCreate(ctx context.Context, productID, warehouseID int64) (*entity.StockRecord, error) {
	s := r.s
	k := stockKey{productID, warehouseID}
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		row, ok := s.stock[k]
		if !ok {
			break
		}
		if visible(row.owner, r.t) {
			return s.stockView(row, r.t), nil
		}
		if err := s.waitFor(ctx, r.t, row.owner); err != nil {
			return nil, err
		}
	}
	row := &stockRow{
		rec:   entity.StockRecord{ProductID: productID, WarehouseID: warehouseID, UpdatedAt: s.now()},
		owner: r.t,
	}
	s.stock[k] = row
	r.t.stock = append(r.t.stock, k)
	return s.stockView(row, r.t), nil
}

func (r *stockRepo) GetForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.StockRecord, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	row, err := s.lockStock(ctx, r.t, stockKey{productID, warehouseID})
	if err != nil || row == nil {
		return nil, err
	}
	return s.stockView(row, r.t), nil
}

func (r *stockRepo) TryDecrement(ctx context.Context, record *entity.StockRecord, units int) (bool, error) {
	if units <= 0 {
		return false, fmt.Errorf("%w: units debe ser mayor que 0", domain.ErrInvalidInput)
	}
	s := r.s
	k := stockKey{record.ProductID, record.WarehouseID}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, err := s.lockStock(ctx, r.t, k)
	if err != nil {
		return false, err
	}
	if row == nil {
		return false, nil
	}
	current := row.rec.Quantity + r.t.deltas[k]
	if current < units {
		return false, nil
	}
	r.t.deltas[k] -= units
	record.Quantity = current - units
	record.UpdatedAt = s.now()
	return true, nil
}

func (r *stockRepo) Increment(ctx context.Context, record *entity.StockRecord, units int) error {
	if units <= 0 {
		return fmt.Errorf("%w: units debe ser mayor que 0", domain.ErrInvalidInput)
	}
	s := r.s
	k := stockKey{record.ProductID, record.WarehouseID}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, err := s.lockStock(ctx, r.t, k)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("registro de stock %d/%d: %w", record.ProductID, record.WarehouseID, domain.ErrNotFound)
	}
	r.t.deltas[k] += units
	record.Quantity = row.rec.Quantity + r.t.deltas[k]
	record.UpdatedAt = s.now()
	return nil
}

func (r *stockRepo) ListByProduct(_ context.Context, productID int64) ([]*entity.StockRecord, error) {
	return r.list(productID, func(*entity.StockRecord) bool { return true }), nil
}

func (r *stockRepo) ListWithStock(_ context.Context, productID int64, minUnits int) ([]*entity.StockRecord, error) {
	return r.list(productID, func(rec *entity.StockRecord) bool {
		return rec.Quantity >= minUnits && rec.Warehouse != nil && rec.Warehouse.Active
	}), nil
}

func (r *stockRepo) list(productID int64, keep func(*entity.StockRecord) bool) []*entity.StockRecord {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.StockRecord, 0)
	for k, row := range s.stock {
		if k.productID != productID || !visible(row.owner, r.t) {
			continue
		}
		rec := s.stockView(row, r.t)
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out
}

type orderRepo struct {
	s *Store
	t *tx
}

func (r *orderRepo) Create(_ context.Context, order *entity.Order) error {
	if order.Units <= 0 {
		return fmt.Errorf("%w: units debe ser mayor que 0", domain.ErrInvalidInput)
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderSeq++
	order.ID = s.orderSeq
	s.orders[order.ID] = &orderRow{o: *order, owner: r.t}
	r.t.orders = append(r.t.orders, order.ID)
	return nil
}

func (r *orderRepo) Finalize(_ context.Context, order *entity.Order) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.orders[order.ID]
	if !ok || !visible(row.owner, r.t) {
		return fmt.Errorf("orden %d: %w", order.ID, domain.ErrNotFound)
	}
	current := row.o
	if upd, ok := r.t.orderUpdates[order.ID]; ok {
		current = upd
	}
	if current.Status != entity.OrderStatusPending {
		return domain.ErrInvalidTransition
	}
	if row.owner == r.t {
		row.o = *order
		return nil
	}
	r.t.orderUpdates[order.ID] = *order
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.orders[id]
	if !ok || !visible(row.owner, r.t) {
		return nil, nil
	}
	o := row.o
	if upd, ok := r.t.orderUpdates[id]; ok {
		o = upd
	}
	return &o, nil
}

type outboxRepo struct {
	s *Store
	t *tx
}

func (r *outboxRepo) Append(_ context.Context, event *entity.OutboxEvent) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outboxSeq++
	event.ID = s.outboxSeq
	event.CreatedAt = s.now()
	if event.Status == "" {
		event.Status = entity.OutboxStatusPending
	}
	s.outbox[event.ID] = &outboxRow{e: *event, owner: r.t}
	r.t.outbox = append(r.t.outbox, event.ID)
	return nil
}
