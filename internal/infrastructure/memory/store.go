// Package memory implementa los repositorios y el TxRunner sobre estructuras en memoria.
// Reproduce la semántica que el motor necesita de PostgreSQL: filas creadas por una transacción
// invisibles hasta el commit, bloqueos de fila exclusivos hasta el fin de la transacción,
// lecturas sin bloqueo que solo ven datos confirmados y detección de deadlocks.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type stockKey struct {
	productID   int64
	warehouseID int64
}

type productRow struct {
	p     entity.Product
	owner *tx
}

type warehouseRow struct {
	w     entity.Warehouse
	owner *tx
}

type stockRow struct {
	rec      entity.StockRecord
	owner    *tx
	lockedBy *tx
}

type orderRow struct {
	o     entity.Order
	owner *tx
}

type outboxRow struct {
	e          entity.OutboxEvent
	owner      *tx
	leaseUntil time.Time
}

// tx estado de una transacción en curso.
type tx struct {
	done       chan struct{}
	waitingFor *tx

	products   []string
	warehouses []string
	stock      []stockKey
	orders     []int64
	outbox     []int64

	locks        []stockKey
	deltas       map[stockKey]int
	orderUpdates map[int64]entity.Order
}

func newTx() *tx {
	return &tx{
		done:         make(chan struct{}),
		deltas:       make(map[stockKey]int),
		orderUpdates: make(map[int64]entity.Order),
	}
}

func visible(owner, t *tx) bool {
	return owner == nil || owner == t
}

// Store base de datos en memoria. Segura para uso concurrente.
type Store struct {
	mu sync.Mutex

	productSeq   int64
	warehouseSeq int64
	orderSeq     int64
	outboxSeq    int64

	products     map[string]*productRow
	warehouses   map[string]*warehouseRow
	warehouseIDs map[int64]*warehouseRow
	stock        map[stockKey]*stockRow
	orders       map[int64]*orderRow
	outbox       map[int64]*outboxRow

	lockTimeout time.Duration
	failCommits int
	now         func() time.Time
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout limita la espera por un bloqueo; al vencer se devuelve ErrStorageConflict.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// New crea un Store vacío.
func New(opts ...Option) *Store {
	s := &Store{
		products:     make(map[string]*productRow),
		warehouses:   make(map[string]*warehouseRow),
		warehouseIDs: make(map[int64]*warehouseRow),
		stock:        make(map[stockKey]*stockRow),
		orders:       make(map[int64]*orderRow),
		outbox:       make(map[int64]*outboxRow),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FailCommits hace que los próximos n commits fallen con ErrStorageConflict (tests de reintento).
func (s *Store) FailCommits(n int) {
	s.mu.Lock()
	s.failCommits = n
	s.mu.Unlock()
}

// Run ejecuta fn dentro de una transacción: Commit si fn no devuelve error, Rollback en otro caso.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	t := newTx()
	finished := false
	defer func() {
		if !finished {
			s.rollback(t)
		}
	}()

	repos := repository.Repos{
		Products:   &productRepo{s: s, t: t},
		Warehouses: &warehouseRepo{s: s, t: t},
		Stock:      &stockRepo{s: s, t: t},
		Orders:     &orderRepo{s: s, t: t},
		Outbox:     &outboxRepo{s: s, t: t},
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.mu.Lock()
	if s.failCommits > 0 {
		s.failCommits--
		s.mu.Unlock()
		return fmt.Errorf("commit transaction: %w", domain.ErrStorageConflict)
	}
	s.commitLocked(t)
	s.mu.Unlock()
	finished = true
	return nil
}

func (s *Store) commitLocked(t *tx) {
	for _, name := range t.products {
		s.products[name].owner = nil
	}
	for _, name := range t.warehouses {
		s.warehouses[name].owner = nil
	}
	for _, k := range t.stock {
		s.stock[k].owner = nil
	}
	for _, id := range t.orders {
		s.orders[id].owner = nil
	}
	for id, o := range t.orderUpdates {
		s.orders[id].o = o
	}
	for _, id := range t.outbox {
		s.outbox[id].owner = nil
	}
	now := s.now()
	for k, d := range t.deltas {
		r := s.stock[k]
		r.rec.Quantity += d
		r.rec.UpdatedAt = now
	}
	s.releaseLocked(t)
}

func (s *Store) rollback(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range t.products {
		delete(s.products, name)
	}
	for _, name := range t.warehouses {
		if r, ok := s.warehouses[name]; ok {
			delete(s.warehouseIDs, r.w.ID)
		}
		delete(s.warehouses, name)
	}
	for _, k := range t.stock {
		delete(s.stock, k)
	}
	for _, id := range t.orders {
		delete(s.orders, id)
	}
	for _, id := range t.outbox {
		delete(s.outbox, id)
	}
	s.releaseLocked(t)
}

func (s *Store) releaseLocked(t *tx) {
	for _, k := range t.locks {
		if r, ok := s.stock[k]; ok && r.lockedBy == t {
			r.lockedBy = nil
		}
	}
	t.locks = nil
	close(t.done)
}

// waitFor espera a que owner termine. Se llama con s.mu tomado y vuelve con s.mu tomado.
// Un ciclo de esperas se reporta como deadlock (ErrStorageConflict), igual que 40P01.
func (s *Store) waitFor(ctx context.Context, t, owner *tx) error {
	for o := owner; o != nil; o = o.waitingFor {
		if o == t {
			return fmt.Errorf("deadlock detectado: %w", domain.ErrStorageConflict)
		}
	}
	t.waitingFor = owner
	done := owner.done
	s.mu.Unlock()

	var timeout <-chan time.Time
	if s.lockTimeout > 0 {
		timer := time.NewTimer(s.lockTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	case <-timeout:
		err = fmt.Errorf("lock timeout: %w", domain.ErrStorageConflict)
	}

	s.mu.Lock()
	t.waitingFor = nil
	return err
}

// lockStock toma el bloqueo exclusivo de la fila para t. Se llama con s.mu tomado.
func (s *Store) lockStock(ctx context.Context, t *tx, k stockKey) (*stockRow, error) {
	for {
		r, ok := s.stock[k]
		if !ok || !visible(r.owner, t) {
			return nil, nil
		}
		if r.lockedBy == nil || r.lockedBy == t {
			if r.lockedBy == nil {
				r.lockedBy = t
				t.locks = append(t.locks, k)
			}
			return r, nil
		}
		if err := s.waitFor(ctx, t, r.lockedBy); err != nil {
			return nil, err
		}
	}
}

func (s *Store) stockView(r *stockRow, t *tx) *entity.StockRecord {
	rec := r.rec
	k := stockKey{rec.ProductID, rec.WarehouseID}
	if t != nil {
		rec.Quantity += t.deltas[k]
	}
	if wr, ok := s.warehouseIDs[rec.WarehouseID]; ok && visible(wr.owner, t) {
		w := wr.w
		rec.Warehouse = &w
	}
	return &rec
}
