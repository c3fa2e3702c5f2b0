package inventory

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Los conflictos transitorios del
// almacenamiento (serialización, deadlock, lock timeout) se devuelven envolviendo domain.ErrStorageConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}
