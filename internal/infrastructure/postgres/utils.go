package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Logistica-api/internal/domain"
)

// SQLSTATE que indican un conflicto transitorio: el intento completo puede repetirse.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03" // lock_timeout
)

// isTransientConflict serialización, deadlock o lock timeout.
func isTransientConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// classifyError envuelve los conflictos transitorios con domain.ErrStorageConflict
// conservando el error original en la cadena.
func classifyError(err error) error {
	if err == nil || errors.Is(err, domain.ErrStorageConflict) {
		return err
	}
	if isTransientConflict(err) {
		return fmt.Errorf("%w: %w", domain.ErrStorageConflict, err)
	}
	return err
}
