package repository

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	// GetOrCreateByName es idempotente: repetir con el mismo nombre devuelve la misma entidad.
	GetOrCreateByName(ctx context.Context, name string) (*entity.Product, error)
	// GetByName devuelve nil, nil si no existe.
	GetByName(ctx context.Context, name string) (*entity.Product, error)
}
