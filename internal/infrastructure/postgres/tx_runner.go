package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED).
type TxRunner struct {
	db          Beginner
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout > 0 se aplica con SET LOCAL en cada tx,
// de modo que una espera por bloqueo termina en 55P03 (reintentable) en vez de colgarse.
func NewTxRunner(db Beginner, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{db: db, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los conflictos transitorios se devuelven envolviendo domain.ErrStorageConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", classifyError(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", classifyError(err))
		}
	}

	repos := repository.Repos{
		Products:   NewProductRepository(tx),
		Warehouses: NewWarehouseRepository(tx),
		Stock:      NewStockRepository(tx),
		Orders:     NewOrderRepository(tx),
		Outbox:     NewOutboxRepository(tx),
	}
	if err := fn(repos); err != nil {
		return classifyError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", classifyError(err))
	}
	return nil
}
