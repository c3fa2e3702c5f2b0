package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, unit_price, created_at`

// GetOrCreateByName busca por nombre y, si no existe, lo inserta.
// ON CONFLICT DO NOTHING espera a un INSERT concurrente del mismo nombre; la relectura posterior lo ve.
func (r *ProductRepo) GetOrCreateByName(ctx context.Context, name string) (*entity.Product, error) {
	p, err := r.GetByName(ctx, name)
	if err != nil || p != nil {
		return p, err
	}
	query := `
		INSERT INTO products (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING ` + productColumns
	p, err = scanProduct(r.q.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	if p != nil {
		return p, nil
	}
	p, err = r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("get or create product %q: fila no visible tras conflicto", name)
	}
	return p, nil
}

// GetByName obtiene un producto por nombre; nil, nil si no existe.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
