package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// seed crea producto, bodegas y stock confirmados.
func seed(t *testing.T, s *Store, product string, stock map[string]int) (int64, map[string]int64) {
	t.Helper()
	var productID int64
	ids := make(map[string]int64)
	err := s.Run(context.Background(), func(r repository.Repos) error {
		p, err := r.Products.GetOrCreateByName(context.Background(), product)
		if err != nil {
			return err
		}
		productID = p.ID
		for name, qty := range stock {
			w, err := r.Warehouses.GetOrCreate(context.Background(), &entity.Warehouse{Name: name, Active: true})
			if err != nil {
				return err
			}
			ids[name] = w.ID
			rec, err := r.Stock.GetOrCreate(context.Background(), p.ID, w.ID)
			if err != nil {
				return err
			}
			if qty > 0 {
				if err := r.Stock.Increment(context.Background(), rec, qty); err != nil {
					return err
				}
			}
		}
		return nil
	})
	require.NoError(t, err)
	return productID, ids
}

func TestStore_RollbackDescartaCambios(t *testing.T) {
	s := New()
	pid, wids := seed(t, s, "Widget", map[string]int{"W1": 5})

	boom := errors.New("boom")
	err := s.Run(context.Background(), func(r repository.Repos) error {
		rec, err := r.Stock.GetForUpdate(context.Background(), pid, wids["W1"])
		require.NoError(t, err)
		ok, err := r.Stock.TryDecrement(context.Background(), rec, 3)
		require.NoError(t, err)
		require.True(t, ok)
		_, err = r.Products.GetOrCreateByName(context.Background(), "Fantasma")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	qty, ok := s.Quantity("Widget", "W1")
	require.True(t, ok)
	assert.Equal(t, 5, qty)
	_, ok = s.products["Fantasma"]
	assert.False(t, ok, "el producto creado en la tx revertida no debe existir")
}

func TestStore_LecturaSinBloqueoNoVeCambiosNoConfirmados(t *testing.T) {
	s := New()
	pid, wids := seed(t, s, "Widget", map[string]int{"W1": 5})

	locked := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Run(context.Background(), func(r repository.Repos) error {
			rec, _ := r.Stock.GetForUpdate(context.Background(), pid, wids["W1"])
			_, _ = r.Stock.TryDecrement(context.Background(), rec, 5)
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	err := s.Run(context.Background(), func(r repository.Repos) error {
		list, err := r.Stock.ListWithStock(context.Background(), pid, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 5, list[0].Quantity)
		return nil
	})
	require.NoError(t, err)
	close(release)
}

func TestStore_BloqueoDeFilaSerializa(t *testing.T) {
	s := New()
	pid, wids := seed(t, s, "Widget", map[string]int{"W1": 5})

	var wg sync.WaitGroup
	var mu sync.Mutex
	confirmed := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Run(context.Background(), func(r repository.Repos) error {
				rec, err := r.Stock.GetForUpdate(context.Background(), pid, wids["W1"])
				if err != nil {
					return err
				}
				ok, err := r.Stock.TryDecrement(context.Background(), rec, 2)
				if err != nil {
					return err
				}
				if ok {
					mu.Lock()
					confirmed++
					mu.Unlock()
				}
				return nil
			})
		}()
	}
	wg.Wait()

	qty, _ := s.Quantity("Widget", "W1")
	assert.Equal(t, 2, confirmed)
	assert.Equal(t, 1, qty)
}

func TestStore_DeadlockSeReportaComoConflicto(t *testing.T) {
	s := New()
	pid, wids := seed(t, s, "Widget", map[string]int{"A": 1, "B": 1})

	aLocked := make(chan struct{})
	bLocked := make(chan struct{})
	errs := make(chan error, 2)

	go func() {
		errs <- s.Run(context.Background(), func(r repository.Repos) error {
			if _, err := r.Stock.GetForUpdate(context.Background(), pid, wids["A"]); err != nil {
				return err
			}
			close(aLocked)
			<-bLocked
			_, err := r.Stock.GetForUpdate(context.Background(), pid, wids["B"])
			return err
		})
	}()
	go func() {
		errs <- s.Run(context.Background(), func(r repository.Repos) error {
			if _, err := r.Stock.GetForUpdate(context.Background(), pid, wids["B"]); err != nil {
				return err
			}
			close(bLocked)
			<-aLocked
			// dar tiempo a que la otra tx quede esperando por B
			time.Sleep(50 * time.Millisecond)
			_, err := r.Stock.GetForUpdate(context.Background(), pid, wids["A"])
			return err
		})
	}()

	first, second := <-errs, <-errs
	conflicts := 0
	for _, err := range []error{first, second} {
		if errors.Is(err, domain.ErrStorageConflict) {
			conflicts++
		} else {
			assert.NoError(t, err)
		}
	}
	assert.Equal(t, 1, conflicts, "exactamente una tx es víctima del deadlock")
}

func TestStore_EsperaDeBloqueoRespetaContexto(t *testing.T) {
	s := New()
	pid, wids := seed(t, s, "Widget", map[string]int{"W1": 5})

	locked := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	go func() {
		_ = s.Run(context.Background(), func(r repository.Repos) error {
			_, _ = r.Stock.GetForUpdate(context.Background(), pid, wids["W1"])
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := s.Run(ctx, func(r repository.Repos) error {
		_, err := r.Stock.GetForUpdate(ctx, pid, wids["W1"])
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_LockTimeoutEsConflicto(t *testing.T) {
	s := New(WithLockTimeout(20 * time.Millisecond))
	pid, wids := seed(t, s, "Widget", map[string]int{"W1": 5})

	locked := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	go func() {
		_ = s.Run(context.Background(), func(r repository.Repos) error {
			_, _ = r.Stock.GetForUpdate(context.Background(), pid, wids["W1"])
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	err := s.Run(context.Background(), func(r repository.Repos) error {
		_, err := r.Stock.GetForUpdate(context.Background(), pid, wids["W1"])
		return err
	})
	assert.ErrorIs(t, err, domain.ErrStorageConflict)
}

func TestStore_GetOrCreateIdempotente(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	ids := make([]int64, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Run(context.Background(), func(r repository.Repos) error {
				p, err := r.Products.GetOrCreateByName(context.Background(), "Widget")
				if err != nil {
					return err
				}
				ids[i] = p.ID
				return nil
			})
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Len(t, s.products, 1)
}

func TestStore_TryDecrementRechazaUnidadesNoPositivas(t *testing.T) {
	s := New()
	pid, wids := seed(t, s, "Widget", map[string]int{"W1": 5})
	err := s.Run(context.Background(), func(r repository.Repos) error {
		rec := &entity.StockRecord{ProductID: pid, WarehouseID: wids["W1"]}
		_, err := r.Stock.TryDecrement(context.Background(), rec, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		return r.Stock.Increment(context.Background(), rec, -1)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	qty, _ := s.Quantity("Widget", "W1")
	assert.Equal(t, 5, qty)
}

func TestStore_FinalizeSoloDesdePending(t *testing.T) {
	s := New()
	err := s.Run(context.Background(), func(r repository.Repos) error {
		p, _ := r.Products.GetOrCreateByName(context.Background(), "Widget")
		o := entity.NewPendingOrder(p, 1, time.Now())
		require.NoError(t, r.Orders.Create(context.Background(), o))
		require.NoError(t, o.Reject(time.Now()))
		require.NoError(t, r.Orders.Finalize(context.Background(), o))
		o.Status = entity.OrderStatusConfirmed
		assert.ErrorIs(t, r.Orders.Finalize(context.Background(), o), domain.ErrInvalidTransition)
		return nil
	})
	require.NoError(t, err)
	orders := s.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, entity.OrderStatusRejected, orders[0].Status)
}

func TestStore_LockBatchSoloEventosConfirmados(t *testing.T) {
	s := New()
	release := make(chan struct{})
	appended := make(chan struct{})
	go func() {
		_ = s.Run(context.Background(), func(r repository.Repos) error {
			_ = r.Outbox.Append(context.Background(), &entity.OutboxEvent{Type: entity.EventOrderRejected})
			close(appended)
			<-release
			return errors.New("rollback")
		})
	}()
	<-appended
	require.NoError(t, s.Run(context.Background(), func(r repository.Repos) error {
		return r.Outbox.Append(context.Background(), &entity.OutboxEvent{Type: entity.EventOrderConfirmed})
	}))

	batch, err := s.LockBatch(context.Background(), "relay-1", 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, entity.EventOrderConfirmed, batch[0].Type)

	again, err := s.LockBatch(context.Background(), "relay-1", 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again, "el lease vigente impide entregarlo dos veces")

	require.NoError(t, s.MarkSent(context.Background(), []int64{batch[0].ID}))
	close(release)
	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, entity.OutboxStatusSent, events[0].Status)
}

// Los nombres que llegan desde Fiber apuntan a un buffer que se reutiliza entre peticiones.
func TestGetOrCreate_ClavesNoDependenDelBufferDelLlamador(t *testing.T) {
	s := New()
	buf := []byte("Botas")
	w := []byte("Norte")
	var productID, warehouseID int64
	require.NoError(t, s.Run(context.Background(), func(r repository.Repos) error {
		p, err := r.Products.GetOrCreateByName(context.Background(), unsafe.String(&buf[0], len(buf)))
		if err != nil {
			return err
		}
		productID = p.ID
		wh, err := r.Warehouses.GetOrCreate(context.Background(), &entity.Warehouse{Name: unsafe.String(&w[0], len(w)), Active: true})
		if err != nil {
			return err
		}
		warehouseID = wh.ID
		return nil
	}))

	copy(buf, "XXXXX")
	copy(w, "YYYYY")

	require.NoError(t, s.Run(context.Background(), func(r repository.Repos) error {
		p, err := r.Products.GetOrCreateByName(context.Background(), "Botas")
		require.NoError(t, err)
		assert.Equal(t, productID, p.ID, "no se crea un producto duplicado")
		wh, err := r.Warehouses.GetByName(context.Background(), "Norte")
		require.NoError(t, err)
		require.NotNil(t, wh)
		assert.Equal(t, warehouseID, wh.ID)
		assert.Equal(t, "Norte", wh.Name)
		return nil
	}))
}
