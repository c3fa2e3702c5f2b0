package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidTransition = errors.New("transición de estado no permitida")

	// ErrWarehouseLocationRequired: la bodega no existe y no se enviaron coordenadas para crearla.
	ErrWarehouseLocationRequired = fmt.Errorf("%w: la bodega no existe y se requieren latitud y longitud", ErrInvalidInput)

	// ErrStorageConflict conflicto transitorio del almacenamiento (serialización, deadlock, lock timeout).
	// Se reintenta el intento completo.
	ErrStorageConflict = errors.New("conflicto transitorio de almacenamiento")

	// ErrRetriesExhausted se agotaron los reintentos ante conflictos transitorios.
	ErrRetriesExhausted = errors.New("reintentos agotados")
)
